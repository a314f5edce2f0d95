package sessionstore

import (
	"encoding/json"
	"errors"
	"fmt"

	"promptagent/internal/domain"
)

var errMissingID = errors.New("session id is required")

// encodeSession is the wire form shared by the redis store and the JSON
// columns of the SQL stores.
func encodeSession(s *domain.Session) ([]byte, error) {
	if s == nil || s.ID == "" {
		return nil, errMissingID
	}
	raw, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("encode session: %w", err)
	}
	return raw, nil
}

func decodeSession(raw []byte) (*domain.Session, error) {
	var s domain.Session
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	if s.Tier == "" {
		s.Tier = domain.TierFree
	}
	return &s, nil
}

func encodeSingleUse(flags map[domain.FeatureKey]bool) ([]byte, error) {
	if len(flags) == 0 {
		return []byte("{}"), nil
	}
	return json.Marshal(flags)
}

func decodeSingleUse(raw []byte) (map[domain.FeatureKey]bool, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var flags map[domain.FeatureKey]bool
	if err := json.Unmarshal(raw, &flags); err != nil {
		return nil, fmt.Errorf("decode single use flags: %w", err)
	}
	if len(flags) == 0 {
		return nil, nil
	}
	return flags, nil
}
