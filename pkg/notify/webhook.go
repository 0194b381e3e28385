package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/labstack/gommon/log"
	"golang.org/x/sync/errgroup"
)

const webhookTimeout = 5 * time.Second

type webhookNotifier struct {
	client *resty.Client
	urls   []string
}

func NewWebhookNotifier(urls []string) Notifier {
	return &webhookNotifier{
		client: resty.New().SetTimeout(webhookTimeout),
		urls:   urls,
	}
}

func (n *webhookNotifier) Notify(ctx context.Context, event Event) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, url := range n.urls {
		url := url
		g.Go(func() error {
			resp, err := n.client.R().
				SetContext(ctx).
				SetBody(event).
				Post(url)
			if err != nil {
				log.Errorf("error reaching webhook | error: %v, url: %s", err, url)
				return err
			}
			if resp.IsError() {
				log.Errorf("webhook rejected data | status: %d, url: %s", resp.StatusCode(), url)
				return fmt.Errorf("webhook %s: status %d", url, resp.StatusCode())
			}
			log.Infof("sent webhook data | url: %s, session: %s", url, event.SessionID)
			return nil
		})
	}
	return g.Wait()
}
