package directory

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"slices"
	"strings"
	"time"

	"go.uber.org/zap"

	"familycal/internal/appers"
	"familycal/pkg/httpclient"
	"familycal/pkg/metrics"
)

const backendHTTP = "http"

// childrenResponse ответ сервиса пользователей на GET /users/{id}/children
type childrenResponse struct {
	Children []string `json:"children"`
	FamilyID string   `json:"familyId"`
}

// HTTPDirectory каталог пользователей, который ходит во внешний сервис
type HTTPDirectory struct {
	client  httpclient.HTTPClient
	baseURL string
	timeout time.Duration
	logger  *zap.SugaredLogger
	m       *metrics.Metrics
}

func NewHTTPDirectory(client httpclient.HTTPClient, baseURL string, timeout time.Duration, logger *zap.SugaredLogger, m *metrics.Metrics) *HTTPDirectory {
	return &HTTPDirectory{
		client:  client,
		baseURL: strings.TrimRight(baseURL, "/"),
		timeout: timeout,
		logger:  logger,
		m:       m,
	}
}

func (d *HTTPDirectory) ChildrenOf(ctx context.Context, parentID string) ([]string, error) {
	resp, err := d.lookup(ctx, "children_of", parentID)
	switch {
	case errors.Is(err, errUnknownUser):
		return []string{}, nil
	case err != nil:
		return nil, err
	}
	if resp.Children == nil {
		return []string{}, nil
	}
	return resp.Children, nil
}

func (d *HTTPDirectory) IsParentOf(ctx context.Context, parentID, childID string) (bool, error) {
	children, err := d.ChildrenOf(ctx, parentID)
	if err != nil {
		return false, err
	}
	return slices.Contains(children, childID), nil
}

func (d *HTTPDirectory) FamilyOf(ctx context.Context, userID string) (string, error) {
	resp, err := d.lookup(ctx, "family_of", userID)
	switch {
	case errors.Is(err, errUnknownUser):
		return "", appers.ErrNoFamily
	case err != nil:
		return "", err
	case resp.FamilyID == "":
		return "", appers.ErrNoFamily
	}
	return resp.FamilyID, nil
}

// HealthCheck сервис пользователей отвечает на /health
func (d *HTTPDirectory) HealthCheck(ctx context.Context) error {
	var body map[string]any
	if err := httpclient.GetJSON(ctx, d.client, d.baseURL+"/health", &body); err != nil {
		return fmt.Errorf("user directory health check failed: %w", err)
	}
	return nil
}

var errUnknownUser = errors.New("unknown user")

func (d *HTTPDirectory) lookup(ctx context.Context, op, userID string) (resp childrenResponse, err error) {
	defer func() {
		d.m.Calendar.DirectoryLookupsTotal.WithLabelValues(backendHTTP, op, lookupResult(err)).Inc()
	}()

	if d.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.timeout)
		defer cancel()
	}

	endpoint := fmt.Sprintf("%s/users/%s/children", d.baseURL, url.PathEscape(userID))
	d.logger.Debugf("[user: %s] directory lookup %s", userID, op)

	err = httpclient.GetJSON(ctx, d.client, endpoint, &resp)
	var statusErr *httpclient.StatusError
	switch {
	case err == nil:
		return resp, nil
	case errors.As(err, &statusErr) && statusErr.Code == http.StatusNotFound:
		return resp, errUnknownUser
	default:
		d.logger.Errorf("[user: %s] directory lookup %s failed: %v", userID, op, err)
		return resp, fmt.Errorf("directory lookup %s: %w", op, err)
	}
}

func lookupResult(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, errUnknownUser):
		return "not_found"
	default:
		return "error"
	}
}
