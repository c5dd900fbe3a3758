package telegram

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"quizfeed/internal/config"
	"quizfeed/internal/domain"
	"quizfeed/internal/ports"
	"quizfeed/internal/render"
)

const (
	defaultEndpoint = "https://api.telegram.org"
	separator       = "───────────────────────────────────"
	hashtags        = "#CurrentAffairs #GujaratiGK #LearnWithFun"

	starQuestionCaption = "આજનો સ્ટાર પ્રશ્ન"
	moreOnChannelFormat = "વધુ %d પ્રશ્નો અમારી ચેનલ પર!"
	joinCaption         = "અપડેટ્સ માટે જોડાઓ"
)

// ErrEmptyPublication is returned when there is no lead question to announce.
var ErrEmptyPublication = errors.New("publication has no questions")

// Notifier announces new articles on a Telegram channel via the bot API.
type Notifier struct {
	botToken string
	channel  string
	endpoint string
	labels   render.Labels
	client   *http.Client
}

var _ ports.PostCommitHook = (*Notifier)(nil)

// NewNotifier registers the bot token and channel handle.
func NewNotifier(cfg config.TelegramConfig, labels render.Labels, client *http.Client) *Notifier {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	endpoint := strings.TrimRight(cfg.Endpoint, "/")
	if endpoint == "" {
		endpoint = defaultEndpoint
	}

	return &Notifier{
		botToken: cfg.BotToken,
		channel:  cfg.Channel,
		endpoint: endpoint,
		labels:   labels,
		client:   client,
	}
}

// Name identifies the hook in logs and metrics.
func (n *Notifier) Name() string {
	return "telegram"
}

// Run posts the announcement for pub.
func (n *Notifier) Run(ctx context.Context, pub domain.Publication) error {
	if n.botToken == "" || n.channel == "" {
		return fmt.Errorf("telegram notifier misconfigured")
	}

	text, err := n.Message(pub)
	if err != nil {
		return err
	}

	form := url.Values{}
	form.Set("chat_id", n.channel)
	form.Set("text", text)
	form.Set("parse_mode", "HTML")

	endpoint := fmt.Sprintf("%s/bot%s/sendMessage", n.endpoint, n.botToken)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("telegram error: %s: %s", resp.Status, describe(resp.Body))
	}

	return nil
}

// Message builds the HTML announcement. Every interpolated value is escaped.
func (n *Notifier) Message(pub domain.Publication) (string, error) {
	lead, ok := pub.Lead()
	if !ok {
		return "", ErrEmptyPublication
	}

	total := pub.Total()
	esc := html.EscapeString

	var b strings.Builder
	fmt.Fprintf(&b, "🌟 <b>%s - %s</b> 🌟\n", esc(pub.Article.DateLabel), esc(n.labels.Heading))
	b.WriteString(separator + "\n\n")
	fmt.Fprintf(&b, "🎯 <b>%s:</b>\n\n", starQuestionCaption)
	fmt.Fprintf(&b, "❓ <b>%s:</b>\n%s\n\n", esc(n.labels.Question), esc(lead.Question.Text))
	fmt.Fprintf(&b, "✅ <b>%s:</b>\n%s\n\n", esc(n.labels.Answer), esc(lead.CorrectAnswer.Text))
	fmt.Fprintf(&b, "💡 <b>%s:</b>\n%s\n\n", esc(n.labels.Explanation), esc(lead.Explanation.Text))
	b.WriteString(separator + "\n")
	fmt.Fprintf(&b, "📚 <b>%s:</b> %d\n", esc(n.labels.Total), total)
	if remaining := total - 1; remaining > 0 {
		fmt.Fprintf(&b, "🔥 <b>"+moreOnChannelFormat+"</b>\n", remaining)
	}
	fmt.Fprintf(&b, "\n🔔 <b>%s:</b>\n%s\n\n", joinCaption, esc(n.channel))
	b.WriteString(hashtags)

	return b.String(), nil
}

func describe(body io.Reader) string {
	var payload struct {
		Description string `json:"description"`
	}
	data, err := io.ReadAll(io.LimitReader(body, 4096))
	if err != nil {
		return "unreadable body"
	}
	if json.Unmarshal(data, &payload) == nil && payload.Description != "" {
		return payload.Description
	}
	return strings.TrimSpace(string(data))
}
