// app/echoServer/jwtx/actor.go
package jwtx

import (
	"errors"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"github.com/sumaro2101/EasyLibrary/model"
)

const actorKey = "actor"

// ActorFromToken builds the acting user out of verified JWT claims.
func ActorFromToken(c echo.Context) (model.Actor, error) {
	tok, ok := c.Get("user").(*jwt.Token)
	if !ok || tok == nil {
		return model.Actor{}, errors.New("no jwt token in context")
	}
	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return model.Actor{}, errors.New("invalid jwt claims")
	}

	sub, ok := claims["sub"].(float64)
	if !ok {
		return model.Actor{}, errors.New("sub missing in claims")
	}
	email, _ := claims["email"].(string)
	role, _ := claims["role"].(string)
	switch model.Role(role) {
	case model.RolePatron, model.RoleLibrarian, model.RoleAdmin:
	default:
		return model.Actor{}, errors.New("unknown role in claims")
	}

	return model.Actor{ID: int64(sub), Email: email, Role: model.Role(role)}, nil
}

// SetActor caches the actor on the request context.
func SetActor(c echo.Context, a model.Actor) { c.Set(actorKey, a) }

// Actor returns the actor placed by the auth middleware.
func Actor(c echo.Context) model.Actor {
	a, _ := c.Get(actorKey).(model.Actor)
	return a
}
