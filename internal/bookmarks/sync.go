package bookmarks

import "context"

// Sync loads the bookmarks once and again every time changes fires, until ctx
// is done or changes is closed. Pass the token watcher's channel so that a
// login or logout in another process is reflected here.
func (c *Client) Sync(ctx context.Context, changes <-chan struct{}) {
	c.reload(ctx, "start")
	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-changes:
			if !ok {
				return
			}
			c.reload(ctx, "token changed")
		}
	}
}

func (c *Client) reload(ctx context.Context, reason string) {
	if err := c.Load(ctx); err != nil {
		c.log.Error().Err(err).Str("reason", reason).Msg("bookmark reload failed")
		return
	}
	c.log.Info().Str("reason", reason).Int("count", len(c.IDs())).Msg("bookmarks reloaded")
}
