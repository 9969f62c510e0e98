package dispatcher

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/valyala/fasthttp"
	"golang.org/x/time/rate"

	"guild-sentinel/internal/logging"
)

const apiBase = "https://discord.com/api/v10"

// Executor issues the latency-sensitive containment calls (ban, timeout)
// straight over fasthttp instead of going through the session's REST layer.
// Requests are throttled by a shared limiter so a ban fan-out cannot trip the
// platform's global rate limit.
type Executor struct {
	client  *fasthttp.Client
	limiter *rate.Limiter
	token   string
}

func NewExecutor(token string) *Executor {
	return &Executor{
		client: &fasthttp.Client{
			MaxConnsPerHost:           64,
			MaxIdleConnDuration:       180 * time.Second,
			ReadTimeout:               2 * time.Second,
			WriteTimeout:              2 * time.Second,
			MaxIdemponentCallAttempts: 1,
			NoDefaultUserAgentHeader:  true,
		},
		// Discord allows 50 requests/s globally per bot
		limiter: rate.NewLimiter(rate.Limit(45), 10),
		token:   token,
	}
}

// ExecuteBan bans userID from guildID. Returns the wall time of the call.
func (e *Executor) ExecuteBan(guildID, userID, reason string) (time.Duration, error) {
	start := time.Now()

	url := fmt.Sprintf("%s/guilds/%s/bans/%s", apiBase, guildID, userID)
	body, _ := json.Marshal(map[string]interface{}{
		"delete_message_seconds": 0,
	})

	status, err := e.do("PUT", url, body, reason)
	if err != nil {
		return 0, err
	}

	elapsed := time.Since(start)
	if status >= 200 && status < 300 {
		logging.Info("[BAN EXECUTED] user=%s guild=%s time=%d ms status=%d",
			userID, guildID, elapsed.Milliseconds(), status)
		return elapsed, nil
	}

	logging.Error("[BAN FAILED] user=%s guild=%s status=%d", userID, guildID, status)
	return elapsed, fmt.Errorf("ban failed: status %d", status)
}

// ExecuteTimeout applies a communication timeout to the member.
func (e *Executor) ExecuteTimeout(guildID, userID string, duration time.Duration, reason string) error {
	url := fmt.Sprintf("%s/guilds/%s/members/%s", apiBase, guildID, userID)
	until := time.Now().Add(duration).UTC().Format(time.RFC3339)
	body, _ := json.Marshal(map[string]interface{}{
		"communication_disabled_until": until,
	})

	status, err := e.do("PATCH", url, body, reason)
	if err != nil {
		return err
	}
	if status >= 200 && status < 300 {
		return nil
	}
	return fmt.Errorf("timeout failed: status %d", status)
}

func (e *Executor) do(method, url string, body []byte, reason string) (int, error) {
	if err := e.limiter.Wait(context.Background()); err != nil {
		return 0, err
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(url)
	req.Header.SetMethod(method)
	req.Header.Set("Authorization", "Bot "+e.token)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Connection", "keep-alive")
	if reason != "" {
		req.Header.Set("X-Audit-Log-Reason", reason)
	}
	req.SetBody(body)

	if err := e.client.DoTimeout(req, resp, 2*time.Second); err != nil {
		return 0, err
	}
	return resp.StatusCode(), nil
}
