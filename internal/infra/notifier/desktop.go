package notifier

import (
	"context"
	"fmt"

	"github.com/gen2brain/beeep"

	"market-pulse/internal/domain/entity"
)

const maxDesktopMessageLength = 200

// DesktopNotifier raises a native OS notification for each alert.
type DesktopNotifier struct {
	notify func(title, message string) error
}

// NewDesktopNotifier creates the notifier.
func NewDesktopNotifier() *DesktopNotifier {
	return &DesktopNotifier{notify: func(title, message string) error {
		return beeep.Notify(title, message, "")
	}}
}

func (d *DesktopNotifier) NotifyAlert(ctx context.Context, r *entity.SentimentResult) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	msg := truncate(fmt.Sprintf("%s\n%s", r.Article.Title, sourceName(r.Article)), maxDesktopMessageLength)
	if err := d.notify(alertTitle(r), msg); err != nil {
		return fmt.Errorf("desktop notification: %w", err)
	}
	return nil
}
