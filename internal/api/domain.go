package api

import (
	"github.com/JaimeStill/lostfound/internal/categories"
	"github.com/JaimeStill/lostfound/internal/claims"
	"github.com/JaimeStill/lostfound/internal/classifier"
	"github.com/JaimeStill/lostfound/internal/items"
	"github.com/JaimeStill/lostfound/internal/notifications"
)

// Domain holds all domain systems that comprise the API.
type Domain struct {
	Categories    categories.System
	Classifier    classifier.System
	LostItems     items.System
	FoundItems    items.System
	Claims        claims.System
	Notifications notifications.System
}

// NewDomain creates all domain systems from the API runtime.
func NewDomain(runtime *Runtime) *Domain {
	db := runtime.Database.Connection()

	categoriesSystem := categories.New(db, runtime.Logger)

	classifierSystem := classifier.New(
		db,
		runtime.Model,
		runtime.Classifier,
		runtime.Metrics,
		runtime.Logger,
		runtime.Pagination,
	)

	newItems := func(kind items.Kind) items.System {
		return items.New(
			kind,
			db,
			runtime.Storage,
			classifierSystem,
			runtime.Metrics,
			runtime.Logger,
			runtime.Pagination,
			runtime.Classifier.BackfillConcurrency,
		)
	}

	notificationsSystem := notifications.New(
		db,
		runtime.Metrics,
		runtime.Logger,
		runtime.Pagination,
	)

	claimsSystem := claims.New(
		db,
		runtime.Storage,
		notificationsSystem,
		runtime.Metrics,
		runtime.Logger,
		runtime.Pagination,
	)

	return &Domain{
		Categories:    categoriesSystem,
		Classifier:    classifierSystem,
		LostItems:     newItems(items.KindLost),
		FoundItems:    newItems(items.KindFound),
		Claims:        claimsSystem,
		Notifications: notificationsSystem,
	}
}
