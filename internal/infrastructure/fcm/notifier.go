package fcm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/google/uuid"
	fcmapi "google.golang.org/api/fcm/v1"
	"google.golang.org/api/option"

	"quizfeed/internal/config"
	"quizfeed/internal/domain"
	"quizfeed/internal/ports"
	"quizfeed/internal/render"
)

const (
	messagingScope      = "https://www.googleapis.com/auth/firebase.messaging"
	defaultAccountFile  = "service-account.json"
	previewRunes        = 100
	previewContinuation = "..."
)

var (
	// ErrNoCredentials is returned when no service account could be located.
	ErrNoCredentials = errors.New("no firebase service account found")
	// ErrNoProjectID is returned when the service account lacks project_id.
	ErrNoProjectID = errors.New("service account has no project_id")
)

// LoadCredentials resolves the service account JSON: inline value first, then the
// configured path, then service-account.json in the working directory.
func LoadCredentials(cfg config.FCMConfig) ([]byte, error) {
	if strings.TrimSpace(cfg.ServiceAccount) != "" {
		data := []byte(cfg.ServiceAccount)
		if !json.Valid(data) {
			return nil, fmt.Errorf("inline service account is not valid json")
		}
		return data, nil
	}

	paths := []string{defaultAccountFile}
	if cfg.ServiceAccountPath != "" {
		paths = append([]string{cfg.ServiceAccountPath}, paths...)
	}
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("read service account %s: %w", path, err)
		}
		return data, nil
	}

	return nil, ErrNoCredentials
}

// ProjectID extracts project_id from a service account document.
func ProjectID(credentials []byte) (string, error) {
	var account struct {
		ProjectID string `json:"project_id"`
	}
	if err := json.Unmarshal(credentials, &account); err != nil {
		return "", fmt.Errorf("decode service account: %w", err)
	}
	if account.ProjectID == "" {
		return "", ErrNoProjectID
	}
	return account.ProjectID, nil
}

// Notifier pushes a topic notification for each new article.
type Notifier struct {
	svc          *fcmapi.Service
	projectID    string
	topic        string
	appLink      string
	imageBaseURL string
	labels       render.Labels
	newID        func() string
}

var _ ports.PostCommitHook = (*Notifier)(nil)

// NewNotifier builds the messaging client from service account credentials.
// Extra options are applied after the credentials.
func NewNotifier(ctx context.Context, cfg config.FCMConfig, credentials []byte, labels render.Labels, opts ...option.ClientOption) (*Notifier, error) {
	projectID, err := ProjectID(credentials)
	if err != nil {
		return nil, err
	}

	clientOpts := append([]option.ClientOption{
		option.WithCredentialsJSON(credentials),
		option.WithScopes(messagingScope),
	}, opts...)

	svc, err := fcmapi.NewService(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("create fcm service: %w", err)
	}

	return &Notifier{
		svc:          svc,
		projectID:    projectID,
		topic:        cfg.Topic,
		appLink:      cfg.AppLink,
		imageBaseURL: strings.TrimRight(cfg.ImageBaseURL, "/"),
		labels:       labels,
		newID:        func() string { return uuid.NewString() },
	}, nil
}

// Name identifies the hook in logs and metrics.
func (n *Notifier) Name() string {
	return "fcm"
}

// Run sends the topic message for pub.
func (n *Notifier) Run(ctx context.Context, pub domain.Publication) error {
	msg, err := n.Message(pub)
	if err != nil {
		return err
	}

	_, err = n.svc.Projects.Messages.
		Send("projects/"+n.projectID, &fcmapi.SendMessageRequest{Message: msg}).
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("send fcm message: %w", err)
	}
	return nil
}

// Message builds the notification payload for pub.
func (n *Notifier) Message(pub domain.Publication) (*fcmapi.Message, error) {
	lead, ok := pub.Lead()
	if !ok {
		return nil, fmt.Errorf("publication has no questions")
	}

	title := fmt.Sprintf("📅 %s - %s", pub.Article.DateLabel, n.labels.Heading)
	body := fmt.Sprintf("❓ %s: %s\n📚 %s: %d",
		n.labels.Question, Preview(lead.Question.Text, previewRunes), n.labels.Total, pub.Total())
	image := n.imageURL(pub.Article.ImageReference)

	data := map[string]string{
		"id":      n.newID(),
		"title":   title,
		"message": body,
		"post_id": strconv.FormatInt(pub.Article.ID, 10),
		"link":    n.appLink,
	}
	if image != "" {
		data["image"] = image
	}

	return &fcmapi.Message{
		Topic: n.topic,
		Notification: &fcmapi.Notification{
			Title: title,
			Body:  body,
			Image: image,
		},
		Data: data,
	}, nil
}

func (n *Notifier) imageURL(reference string) string {
	if n.imageBaseURL == "" || reference == "" {
		return ""
	}
	return n.imageBaseURL + "/" + url.PathEscape(reference)
}

// Preview truncates text to limit runes and always appends the continuation marker.
func Preview(text string, limit int) string {
	runes := []rune(text)
	if len(runes) > limit {
		runes = runes[:limit]
	}
	return string(runes) + previewContinuation
}
