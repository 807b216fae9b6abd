// Copyright © 2024 Galvanized Logic Inc.

package physics

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBaseContactListenerDefaultsToPermissive(t *testing.T) {
	var l ContactListener = BaseContactListener{}
	assert.True(t, l.OnBodyPairValidate(InvalidBodyId, InvalidBodyId))
	assert.True(t, l.OnContactValidate(InvalidBodyId, InvalidBodyId, nil, nil))
	// no-op callbacks must not panic.
	l.OnContactAdded(InvalidBodyId, InvalidBodyId, nil)
	l.OnContactPersisted(InvalidBodyId, InvalidBodyId, nil)
	l.OnContactRemoved(InvalidBodyId, InvalidBodyId)
}

type overridingListener struct {
	BaseContactListener
	rejectPair bool
}

func (o overridingListener) OnBodyPairValidate(BodyId, BodyId) bool { return !o.rejectPair }

func TestEmbeddingBaseContactListenerAllowsPartialOverride(t *testing.T) {
	var l ContactListener = overridingListener{rejectPair: true}
	assert.False(t, l.OnBodyPairValidate(InvalidBodyId, InvalidBodyId))
	// the rest of the interface still resolves to the embedded defaults.
	assert.True(t, l.OnContactValidate(InvalidBodyId, InvalidBodyId, nil, nil))
}
