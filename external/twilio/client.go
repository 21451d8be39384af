package twilio

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/predictz/internal/platform/logging"
	"github.com/riskibarqy/predictz/internal/usecase"
	"github.com/valyala/fasthttp"
)

const (
	defaultBaseURL = "https://api.twilio.com/2010-04-01"
	defaultTimeout = 10 * time.Second
	channelPrefix  = "whatsapp:"
	maxBodyChars   = 1600
)

type ClientConfig struct {
	BaseURL    string
	AccountSID string
	AuthToken  string
	From       string
	Timeout    time.Duration
	Logger     *logging.Logger
}

// Client sends WhatsApp messages through the Twilio Messages API.
type Client struct {
	http       *fasthttp.Client
	baseURL    string
	accountSID string
	authHeader string
	from       string
	timeout    time.Duration
	logger     *logging.Logger
}

type messageResponse struct {
	SID     string `json:"sid"`
	Status  string `json:"status"`
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func NewClient(cfg ClientConfig) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	sid := strings.TrimSpace(cfg.AccountSID)
	credentials := base64.StdEncoding.EncodeToString([]byte(sid + ":" + strings.TrimSpace(cfg.AuthToken)))

	return &Client{
		http: &fasthttp.Client{
			Name:         "predictz",
			ReadTimeout:  timeout,
			WriteTimeout: timeout,
		},
		baseURL:    baseURL,
		accountSID: sid,
		authHeader: "Basic " + credentials,
		from:       WhatsAppAddress(cfg.From),
		timeout:    timeout,
		logger:     logger,
	}
}

// Configured reports whether the credentials needed to send are present.
func (c *Client) Configured() bool {
	return c.accountSID != "" && c.from != ""
}

// SendMessage posts one outbound message. Bodies longer than Twilio's limit
// are truncated.
func (c *Client) SendMessage(ctx context.Context, to, body string) error {
	if !c.Configured() {
		return fmt.Errorf("%w: twilio sender is not configured", usecase.ErrInvalidInput)
	}
	to = WhatsAppAddress(to)
	if to == "" {
		return fmt.Errorf("%w: recipient is required", usecase.ErrInvalidInput)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	args := fasthttp.AcquireArgs()
	defer fasthttp.ReleaseArgs(args)
	args.Add("From", c.from)
	args.Add("To", to)
	args.Add("Body", truncate(body, maxBodyChars))

	req.SetRequestURI(fmt.Sprintf("%s/Accounts/%s/Messages.json", c.baseURL, c.accountSID))
	req.Header.SetMethod(fasthttp.MethodPost)
	req.Header.SetContentType("application/x-www-form-urlencoded")
	req.Header.Set("Authorization", c.authHeader)
	req.Header.Set("Accept", "application/json")
	req.SetBody(args.QueryString())

	var err error
	if deadline, ok := ctx.Deadline(); ok {
		err = c.http.DoDeadline(req, resp, deadline)
	} else {
		err = c.http.DoTimeout(req, resp, c.timeout)
	}
	if err != nil {
		return fmt.Errorf("%w: send twilio message: %v", usecase.ErrDependencyUnavailable, err)
	}

	var decoded messageResponse
	if raw := resp.Body(); len(raw) > 0 {
		if decodeErr := sonic.Unmarshal(raw, &decoded); decodeErr != nil {
			c.logger.WarnContext(ctx, "decode twilio response failed", "status", resp.StatusCode(), "error", decodeErr)
		}
	}

	status := resp.StatusCode()
	if status/100 != 2 {
		return statusError(status, decoded)
	}
	c.logger.InfoContext(ctx, "twilio message queued", "to", to, "sid", decoded.SID, "status", decoded.Status)
	return nil
}

func statusError(status int, decoded messageResponse) error {
	detail := fmt.Sprintf("twilio status=%d code=%d message=%s", status, decoded.Code, decoded.Message)
	switch {
	case status == fasthttp.StatusTooManyRequests:
		return fmt.Errorf("%w: %s", usecase.ErrRateLimited, detail)
	case status == fasthttp.StatusUnauthorized || status == fasthttp.StatusForbidden:
		return fmt.Errorf("%w: %s", usecase.ErrForbidden, detail)
	case status >= fasthttp.StatusInternalServerError:
		return fmt.Errorf("%w: %s", usecase.ErrDependencyUnavailable, detail)
	default:
		return crerr.Newf("%s", detail)
	}
}

// WhatsAppAddress adds the channel prefix Twilio expects. An empty number
// stays empty.
func WhatsAppAddress(number string) string {
	number = strings.TrimSpace(number)
	if number == "" || strings.HasPrefix(number, channelPrefix) {
		return number
	}
	return channelPrefix + number
}

func truncate(body string, limit int) string {
	runes := []rune(body)
	if len(runes) <= limit {
		return body
	}
	return string(runes[:limit-3]) + "..."
}
