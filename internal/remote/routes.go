package remote

import (
	"fmt"

	urlkit "github.com/goliatone/go-urlkit"
)

const (
	routeGroup         = "api"
	routeCreateArticle = "article.create"
	routeUpdateArticle = "article.update"
	routeUploadImage   = "image.upload"
)

var apiPaths = map[string]string{
	routeCreateArticle: "/api/v1/text_notes",
	routeUpdateArticle: "/api/v1/text_notes/:id",
	routeUploadImage:   "/api/v1/upload_image",
}

type routes struct {
	group *urlkit.Group
}

func newRoutes(baseURL string) (*routes, error) {
	manager := urlkit.NewRouteManager(&urlkit.Config{
		Groups: []urlkit.GroupConfig{
			{
				Name:    routeGroup,
				BaseURL: baseURL,
				Paths:   apiPaths,
			},
		},
	})
	group, err := lookupGroup(manager, routeGroup)
	if err != nil {
		return nil, err
	}
	return &routes{group: group}, nil
}

func (r *routes) url(route string, params map[string]any) (string, error) {
	builder, err := safeBuilder(r.group, route)
	if err != nil {
		return "", err
	}
	for key, val := range params {
		builder.WithParam(key, val)
	}
	return builder.Build()
}

func lookupGroup(manager *urlkit.RouteManager, name string) (group *urlkit.Group, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("remote: route group %q not found", name)
		}
	}()
	group = manager.Group(name)
	return group, err
}

func safeBuilder(group *urlkit.Group, route string) (builder *urlkit.Builder, err error) {
	if group == nil {
		return nil, fmt.Errorf("remote: urlkit group is nil")
	}
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("remote: urlkit builder panic: %v", rec)
		}
	}()
	builder = group.Builder(route)
	return builder, err
}
