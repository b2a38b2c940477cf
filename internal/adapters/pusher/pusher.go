// Package pusher adapts the hosted Channels client to the app-facing
// Publisher and Authorizer interfaces.
package pusher

import (
	pusher "github.com/pusher/pusher-http-go/v5"

	"gameroom/internal/app"
)

type Client struct {
	p pusher.Client
}

func New(appID, key, secret, cluster string) *Client {
	return &Client{p: pusher.Client{
		AppID:   appID,
		Key:     key,
		Secret:  secret,
		Cluster: cluster,
	}}
}

func (c *Client) Trigger(channel, event string, data map[string]any) error {
	return c.p.Trigger(channel, event, data)
}

func (c *Client) AuthorizePresenceChannel(params []byte, member app.PresenceMember) ([]byte, error) {
	return c.p.AuthorizePresenceChannel(params, pusher.MemberData{
		UserID:   member.UserID,
		UserInfo: member.UserInfo,
	})
}

func (c *Client) AuthorizePrivateChannel(params []byte) ([]byte, error) {
	return c.p.AuthorizePrivateChannel(params)
}
