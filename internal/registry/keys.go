package registry

import (
	"github.com/go-playground/validator/v10"

	"github.com/nfrund/battlehub/internal/battle/dex"
	"github.com/nfrund/battlehub/internal/battle/effect/catalog"
	"github.com/nfrund/battlehub/internal/battle/mechanics"
	"github.com/nfrund/battlehub/internal/pubsub"
	"github.com/nfrund/battlehub/internal/script"
)

// Typed service keys for the battle domain. Using Key[T] constants instead
// of bare strings prevents typos and lets Get/Set catch a wrong-type
// registration at the call site rather than at a runtime cast.
var (
	DexKey       = Key[dex.Dex]("battle.dex")
	CatalogKey   = Key[*catalog.Catalog]("battle.catalog")
	MechanicsKey = Key[mechanics.Gen]("battle.mechanics")

	ScriptEngineKey = Key[*script.ContextAwareEngine]("battle.scriptEngine")

	PublisherKey  = Key[pubsub.Publisher]("battle.publisher")
	SubscriberKey = Key[pubsub.Subscriber]("battle.subscriber")

	ValidatorKey = Key[*validator.Validate]("battle.validator")
)
