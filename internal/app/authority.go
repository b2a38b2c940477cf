package app

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const (
	presencePrefix = "presence-"
	privatePrefix  = "private-"
)

var ErrInvalidChannel = errors.New("invalid channel type")

// PresenceMember is the identity embedded in a presence grant.
type PresenceMember struct {
	UserID   string
	UserInfo map[string]string
}

// Authorizer produces the provider-signed grant for a subscription
// request. params is the raw form body the provider's client expects.
type Authorizer interface {
	AuthorizePresenceChannel(params []byte, member PresenceMember) ([]byte, error)
	AuthorizePrivateChannel(params []byte) ([]byte, error)
}

// Authority decides which channel names may be subscribed. This is a
// capability check only: the connecting socket is taken as sufficient
// proof of identity, so the presence grant carries a synthesized
// per-connection id rather than anything the client claimed.
type Authority struct {
	auth Authorizer
}

func NewAuthority(auth Authorizer) *Authority {
	return &Authority{auth: auth}
}

func (a *Authority) Authorize(params []byte, channelName string) ([]byte, error) {
	switch {
	case strings.HasPrefix(channelName, presencePrefix):
		member := PresenceMember{
			UserID: uuid.NewString(),
			UserInfo: map[string]string{
				"joined_at": time.Now().UTC().Format(time.RFC3339),
			},
		}
		return a.auth.AuthorizePresenceChannel(params, member)
	case strings.HasPrefix(channelName, privatePrefix):
		return a.auth.AuthorizePrivateChannel(params)
	default:
		log.Warn().Str("module", "app.authority").Str("channel", channelName).Msg("rejected channel prefix")
		return nil, ErrInvalidChannel
	}
}
