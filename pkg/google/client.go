package google

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	"github.com/harrisonrobin/habitask/pkg/auth"
	"github.com/harrisonrobin/habitask/pkg/colors"
	"github.com/harrisonrobin/habitask/pkg/index"
)

// NewClient authenticates with the credentials in configDir and resolves
// calendarName to its id.
func NewClient(ctx context.Context, configDir, calendarName string, idx *index.EventIndex, cache *colors.ColorCache, logger *zap.Logger) (*CalendarClient, error) {
	client, err := auth.GetClient(ctx, configDir, auth.CalendarScopes, logger)
	if err != nil {
		return nil, err
	}

	srv, err := calendar.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return nil, fmt.Errorf("unable to retrieve Calendar client: %w", err)
	}

	calendarID, err := FindCalendarID(ctx, srv, calendarName)
	if err != nil {
		return nil, err
	}
	return NewCalendarClient(srv, calendarID, idx, cache), nil
}

// FindCalendarID looks a calendar up by its display name.
func FindCalendarID(ctx context.Context, srv *calendar.Service, name string) (string, error) {
	calendarList, err := srv.CalendarList.List().Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("unable to retrieve calendar list: %w", err)
	}
	for _, item := range calendarList.Items {
		if item.Summary == name {
			return item.Id, nil
		}
	}
	return "", fmt.Errorf("calendar '%s' not found", name)
}
