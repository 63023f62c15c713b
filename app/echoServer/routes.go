package echoServer

import (
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"

	authctl "github.com/sumaro2101/EasyLibrary/app/echoServer/controller/auth"
	catalogctl "github.com/sumaro2101/EasyLibrary/app/echoServer/controller/catalog"
	extensionctl "github.com/sumaro2101/EasyLibrary/app/echoServer/controller/extension"
	orderctl "github.com/sumaro2101/EasyLibrary/app/echoServer/controller/order"
	userctl "github.com/sumaro2101/EasyLibrary/app/echoServer/controller/user"
	"github.com/sumaro2101/EasyLibrary/model"
)

// C bundles the controllers a server mounts.
type C struct {
	Auth      *authctl.Controller
	User      *userctl.Controller
	Catalog   *catalogctl.Controller
	Order     *orderctl.Controller
	Extension *extensionctl.Controller
}

// Register mounts every route under /v1. Catalog reads are public; the
// rest requires a token, with writes gated by role capabilities.
func Register(e *echo.Echo, ctl C, jwtSecret string) {
	v1 := e.Group("/v1")

	v1.POST("/users/register", ctl.Auth.Register)
	v1.POST("/users/login", ctl.Auth.Login)

	v1.GET("/books", ctl.Catalog.ListBooks)
	v1.GET("/books/:id", ctl.Catalog.GetBook)
	v1.GET("/authors", ctl.Catalog.ListAuthors)
	v1.GET("/authors/:id", ctl.Catalog.GetAuthor)
	v1.GET("/publishers", ctl.Catalog.ListPublishers)
	v1.GET("/publishers/:id", ctl.Catalog.GetPublisher)
	v1.GET("/volumes", ctl.Catalog.ListVolumes)
	v1.GET("/volumes/:id", ctl.Catalog.GetVolume)
	v1.GET("/genres", ctl.Catalog.ListGenres)
	v1.GET("/genres/:id", ctl.Catalog.GetGenre)

	authed := v1.Group("")
	authed.Use(echojwt.WithConfig(echojwt.Config{SigningKey: []byte(jwtSecret)}))
	authed.Use(ExtractActor())

	authed.GET("/users/:id", ctl.User.Get)
	authed.PATCH("/users/:id", ctl.User.Update)
	authed.DELETE("/users/:id", ctl.User.Delete)

	authed.POST("/books/:id/orders", ctl.Order.Checkout)
	authed.GET("/orders", ctl.Order.List)
	authed.GET("/orders/:id", ctl.Order.Get)
	authed.POST("/orders/:id/extensions", ctl.Extension.Open)
	authed.GET("/extensions", ctl.Extension.List)
	authed.GET("/extensions/:id", ctl.Extension.Get)

	staff := authed.Group("", Require(model.Role.CanResolveLending))
	staff.DELETE("/orders/:id", ctl.Order.Close)
	staff.PATCH("/extensions/:id/accept", ctl.Extension.Accept)
	staff.PATCH("/extensions/:id/cancel", ctl.Extension.Cancel)

	manage := authed.Group("", Require(model.Role.CanManageCatalog))
	manage.POST("/books", ctl.Catalog.CreateBook)
	manage.PUT("/books/:id", ctl.Catalog.UpdateBook)
	manage.DELETE("/books/:id", ctl.Catalog.DeleteBook)
	manage.POST("/authors", ctl.Catalog.CreateAuthor)
	manage.PUT("/authors/:id", ctl.Catalog.UpdateAuthor)
	manage.DELETE("/authors/:id", ctl.Catalog.DeleteAuthor)
	manage.POST("/publishers", ctl.Catalog.CreatePublisher)
	manage.PUT("/publishers/:id", ctl.Catalog.UpdatePublisher)
	manage.DELETE("/publishers/:id", ctl.Catalog.DeletePublisher)
	manage.POST("/volumes", ctl.Catalog.CreateVolume)
	manage.PUT("/volumes/:id", ctl.Catalog.UpdateVolume)
	manage.DELETE("/volumes/:id", ctl.Catalog.DeleteVolume)
	manage.POST("/genres", ctl.Catalog.CreateGenre)
	manage.PUT("/genres/:id", ctl.Catalog.UpdateGenre)
	manage.DELETE("/genres/:id", ctl.Catalog.DeleteGenre)
}
