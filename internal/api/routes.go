package api

import (
	"net/http"

	"github.com/JaimeStill/lostfound/pkg/routes"
)

func registerRoutes(mux *http.ServeMux, domain *Domain, maxUploadSize int64) {
	routes.Register(mux, groups(domain, maxUploadSize)...)
}

func groups(domain *Domain, maxUploadSize int64) []routes.Group {
	return []routes.Group{
		domain.Categories.Handler().Routes(),
		domain.Classifier.Handler(maxUploadSize).Routes(),
		domain.LostItems.Handler(maxUploadSize).Routes(),
		domain.FoundItems.Handler(maxUploadSize).Routes(),
		domain.Claims.Handler(maxUploadSize).Routes(),
		domain.Notifications.Handler().Routes(),
	}
}
