// Package pushsvc implements the notification gateway on Firebase Cloud
// Messaging.
package pushsvc

import (
	"context"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"github.com/pkg/errors"
	"google.golang.org/api/option"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/notification"
)

// maxTokensPerSend is the FCM multicast limit.
const maxTokensPerSend = 500

type fcmGateway struct {
	client *messaging.Client
	logger core.Logger
}

var _ notification.Gateway = (*fcmGateway)(nil)

func NewFCMGateway(ctx context.Context, conf *core.Config, logger core.Logger) (*fcmGateway, error) {
	app, err := firebase.NewApp(ctx, nil, option.WithCredentialsFile(conf.Firebase.CredentialsFile))
	if err != nil {
		return nil, errors.Wrap(err, "initializing firebase app")
	}
	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "initializing firebase messaging client")
	}
	return &fcmGateway{client: client, logger: logger}, nil
}

func (gw *fcmGateway) Send(ctx context.Context, msg notification.Message) error {
	for _, tokens := range chunkTokens(msg.Tokens, maxTokensPerSend) {
		res, err := gw.client.SendEachForMulticast(ctx, &messaging.MulticastMessage{
			Tokens: tokens,
			Notification: &messaging.Notification{
				Title: msg.Title,
				Body:  msg.Body,
			},
			Data: msg.Data,
		})
		if err != nil {
			return errors.Wrap(err, "sending multicast message")
		}
		if res.FailureCount > 0 {
			gw.logger.Warn("push: partial delivery failure",
				map[string]interface{}{"failed": res.FailureCount, "sent": res.SuccessCount})
		}
	}
	return nil
}

func chunkTokens(tokens []string, size int) [][]string {
	var chunks [][]string
	for len(tokens) > size {
		chunks = append(chunks, tokens[:size])
		tokens = tokens[size:]
	}
	if len(tokens) > 0 {
		chunks = append(chunks, tokens)
	}
	return chunks
}
