package calendar

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	gcal "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	"github.com/example/meeting-coordinator/internal/schedule"
)

// GoogleConfig configures the Google Calendar provider. Credentials come from
// an explicit client id/secret pair or, failing that, a credentials.json
// file. Each participant needs a previously issued token file named
// token-<localpart>.json in TokensDir.
type GoogleConfig struct {
	ClientID        string
	ClientSecret    string
	CredentialsFile string
	TokensDir       string
}

// GoogleProvider answers busy-interval lookups with the Google Calendar
// FreeBusy API, one authenticated service per participant.
type GoogleProvider struct {
	oauthConfig *oauth2.Config
	tokensDir   string
	logger      *slog.Logger

	mu       sync.Mutex
	services map[string]*gcal.Service
}

// NewGoogleProvider builds the provider and validates the OAuth client
// configuration up front. Participant tokens are loaded lazily on first use.
func NewGoogleProvider(cfg GoogleConfig, logger *slog.Logger) (*GoogleProvider, error) {
	oauthConfig, err := googleOAuthConfig(cfg)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &GoogleProvider{
		oauthConfig: oauthConfig,
		tokensDir:   cfg.TokensDir,
		logger:      logger,
		services:    make(map[string]*gcal.Service),
	}, nil
}

// BusyIntervals queries FreeBusy for one participant over the window.
func (p *GoogleProvider) BusyIntervals(ctx context.Context, participant string, window schedule.Interval) ([]schedule.Interval, error) {
	service, err := p.serviceFor(ctx, participant)
	if err != nil {
		return nil, err
	}

	query := &gcal.FreeBusyRequest{
		TimeMin: window.Start.UTC().Format(time.RFC3339),
		TimeMax: window.End.UTC().Format(time.RFC3339),
		Items:   []*gcal.FreeBusyRequestItem{{Id: participant}},
	}
	resp, err := service.Freebusy.Query(query).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("freebusy query for %s: %w", participant, err)
	}

	calendarInfo, ok := resp.Calendars[participant]
	if !ok {
		return nil, fmt.Errorf("freebusy response missing calendar %s", participant)
	}
	if len(calendarInfo.Errors) > 0 {
		return nil, fmt.Errorf("freebusy lookup for %s: %s", participant, calendarInfo.Errors[0].Reason)
	}

	busy := make([]schedule.Interval, 0, len(calendarInfo.Busy))
	for _, period := range calendarInfo.Busy {
		start, err := time.Parse(time.RFC3339, period.Start)
		if err != nil {
			return nil, fmt.Errorf("freebusy period start %q: %w", period.Start, err)
		}
		end, err := time.Parse(time.RFC3339, period.End)
		if err != nil {
			return nil, fmt.Errorf("freebusy period end %q: %w", period.End, err)
		}
		busy = append(busy, schedule.Interval{Start: start.UTC(), End: end.UTC()})
	}
	return busy, nil
}

// serviceFor returns the authenticated service for a participant, building
// and caching it on first use.
func (p *GoogleProvider) serviceFor(ctx context.Context, participant string) (*gcal.Service, error) {
	p.mu.Lock()
	service, ok := p.services[participant]
	p.mu.Unlock()
	if ok {
		return service, nil
	}

	token, err := p.tokenFor(participant)
	if err != nil {
		return nil, err
	}

	// The service outlives this request, so it must not inherit the
	// per-fetch deadline.
	client := p.oauthConfig.Client(context.WithoutCancel(ctx), token)
	service, err = gcal.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return nil, fmt.Errorf("calendar service for %s: %w", participant, err)
	}

	p.mu.Lock()
	p.services[participant] = service
	p.mu.Unlock()
	return service, nil
}

// tokenFor loads a participant's OAuth token from TokensDir.
func (p *GoogleProvider) tokenFor(participant string) (*oauth2.Token, error) {
	localpart, _, _ := strings.Cut(participant, "@")
	path := filepath.Join(p.tokensDir, fmt.Sprintf("token-%s.json", localpart))

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("no calendar token for %s: %w", participant, err)
	}
	defer f.Close()

	token := &oauth2.Token{}
	if err := json.NewDecoder(f).Decode(token); err != nil {
		return nil, fmt.Errorf("decode calendar token for %s: %w", participant, err)
	}
	return token, nil
}

// googleOAuthConfig builds the OAuth client config, preferring explicit
// credentials over credentials.json.
func googleOAuthConfig(cfg GoogleConfig) (*oauth2.Config, error) {
	if cfg.ClientID != "" && cfg.ClientSecret != "" {
		return &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  "urn:ietf:wg:oauth:2.0:oob",
			Scopes:       []string{gcal.CalendarReadonlyScope},
			Endpoint:     google.Endpoint,
		}, nil
	}

	credentialsFile := cfg.CredentialsFile
	if credentialsFile == "" {
		credentialsFile = "credentials.json"
	}
	raw, err := os.ReadFile(credentialsFile)
	if err != nil {
		return nil, fmt.Errorf("read calendar credentials: %w", err)
	}
	oauthConfig, err := google.ConfigFromJSON(raw, gcal.CalendarReadonlyScope)
	if err != nil {
		return nil, fmt.Errorf("parse calendar credentials: %w", err)
	}
	oauthConfig.RedirectURL = "urn:ietf:wg:oauth:2.0:oob"
	return oauthConfig, nil
}
