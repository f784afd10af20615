package middleware

import (
	"context"
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v4"

	"github.com/usercreator005/ff-india-tournaments-sub000/models"
)

// Имена JWT claims, из которых собирается Actor.
const (
	jwtClaimEmail        = "email"
	jwtClaimRole         = "role"
	jwtClaimTenantID     = "tenant_id"
	jwtClaimCapabilities = "capabilities"
)

// ActorFromContext возвращает актора, положенного туда Authenticate.
func ActorFromContext(ctx context.Context) (models.Actor, error) {
	actor, ok := ctx.Value(actorContextKey).(models.Actor)
	if !ok {
		return models.Actor{}, errors.New("actor not found in context")
	}
	return actor, nil
}

func actorFromClaims(claims jwt.MapClaims) (models.Actor, error) {
	email, ok := claims[jwtClaimEmail].(string)
	if !ok || email == "" {
		return models.Actor{}, fmt.Errorf("missing '%s' claim in token", jwtClaimEmail)
	}

	roleStr, ok := claims[jwtClaimRole].(string)
	if !ok {
		return models.Actor{}, fmt.Errorf("missing '%s' claim in token", jwtClaimRole)
	}
	role := models.Role(roleStr)
	switch role {
	case models.RoleUser, models.RoleAdmin, models.RoleStaff, models.RoleSuperAdmin:
	default:
		return models.Actor{}, fmt.Errorf("invalid role value in claim: %q", roleStr)
	}

	actor := models.Actor{Email: email, Role: role}

	// tenant_id обязателен для всех, кроме обычных пользователей и
	// супер-админа.
	if tenantClaim, present := claims[jwtClaimTenantID]; present {
		tenantFloat, okFloat := tenantClaim.(float64)
		if !okFloat || tenantFloat != float64(int(tenantFloat)) || int(tenantFloat) <= 0 {
			return models.Actor{}, fmt.Errorf("invalid '%s' claim: %v", jwtClaimTenantID, tenantClaim)
		}
		tenantID := int(tenantFloat)
		actor.TenantID = &tenantID
	}
	if (role == models.RoleAdmin || role == models.RoleStaff) && actor.TenantID == nil {
		return models.Actor{}, fmt.Errorf("missing '%s' claim for role %q", jwtClaimTenantID, role)
	}

	if role == models.RoleStaff {
		rawCaps, present := claims[jwtClaimCapabilities]
		if !present {
			return models.Actor{}, fmt.Errorf("missing '%s' claim for staff token", jwtClaimCapabilities)
		}
		capsSlice, okSlice := rawCaps.([]interface{})
		if !okSlice {
			return models.Actor{}, fmt.Errorf("invalid type for '%s' claim: expected array, got %T", jwtClaimCapabilities, rawCaps)
		}
		actor.Capabilities = make(map[models.Capability]bool, len(capsSlice))
		for _, raw := range capsSlice {
			capStr, okStr := raw.(string)
			if !okStr {
				return models.Actor{}, fmt.Errorf("invalid capability entry in claim: %v", raw)
			}
			actor.Capabilities[models.Capability(capStr)] = true
		}
	}

	return actor, nil
}
