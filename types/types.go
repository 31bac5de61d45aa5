package types

import (
	"bytes"
	"encoding/json"
	"strconv"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Identity is the asserted-identity header value, kept verbatim.
type Identity string

// SystemIdentity creates the channels the server seeds on its own.
const SystemIdentity Identity = `{"id":"server","userName":"server"}`

// IdentityClaims is the part of an identity token the service understands.
type IdentityClaims struct {
	ID string
}

// Decode parses the token's id subfield. Gateways emit either a string or a
// numeric id. Numbers are normalised, so 1e3 and 1000 decode to "1000".
func (i Identity) Decode() (IdentityClaims, error) {
	var raw struct {
		ID json.RawMessage `json:"id"`
	}
	if err := json.Unmarshal([]byte(i), &raw); err != nil {
		return IdentityClaims{}, errors.Wrap(err, "error decoding identity")
	}
	if len(raw.ID) == 0 || bytes.Equal(raw.ID, []byte("null")) {
		return IdentityClaims{}, errors.New("identity has no id")
	}

	var id string
	if raw.ID[0] == '"' {
		if err := json.Unmarshal(raw.ID, &id); err != nil {
			return IdentityClaims{}, errors.Wrap(err, "error decoding identity id")
		}
	} else {
		var n json.Number
		if err := json.Unmarshal(raw.ID, &n); err != nil {
			return IdentityClaims{}, errors.New("identity id must be a string or number")
		}
		f, err := strconv.ParseFloat(n.String(), 64)
		if err != nil {
			return IdentityClaims{}, errors.Wrap(err, "error decoding identity id")
		}
		id = strconv.FormatFloat(f, 'f', -1, 64)
	}
	if id == "" {
		return IdentityClaims{}, errors.New("identity has no id")
	}
	return IdentityClaims{ID: id}, nil
}

// SameAs reports whether both tokens name the same user. Tokens that fail to
// decode never match anything.
func (i Identity) SameAs(other Identity) bool {
	a, err := i.Decode()
	if err != nil {
		return false
	}
	b, err := other.Decode()
	if err != nil {
		return false
	}
	return a.ID == b.ID
}

// MarshalJSON embeds the token as a JSON object when it is one.
func (i Identity) MarshalJSON() ([]byte, error) {
	if json.Valid([]byte(i)) {
		return []byte(i), nil
	}
	return json.Marshal(string(i))
}

func (i *Identity) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*i = Identity(s)
		return nil
	}
	if !json.Valid(data) {
		return errors.New("invalid identity json")
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, data); err != nil {
		return err
	}
	*i = Identity(buf.String())
	return nil
}

// NowMillis returns the current time in milliseconds since the epoch.
func NowMillis() int64 {
	return time.Now().UnixMilli()
}

// NewID returns a fresh ObjectID rendered as hex.
func NewID() string {
	return primitive.NewObjectID().Hex()
}
