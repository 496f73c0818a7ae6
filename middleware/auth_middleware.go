// middleware/auth_middleware.go
package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/umshah583/quickway_backend/config"
	"github.com/umshah583/quickway_backend/models"
)

// RequireUserType checks if the authenticated user has one of the allowed user types
func RequireUserType(allowedTypes ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			userType := ExtractUserType(c)

			if userType == "" {
				return c.JSON(http.StatusUnauthorized, models.Response{
					Status:  http.StatusUnauthorized,
					Message: "Authentication failed: user type not found",
				})
			}

			for _, allowedType := range allowedTypes {
				if userType == allowedType {
					return next(c)
				}
			}

			c.Logger().Errorf("Access denied for user type: %s, allowed types: %v", userType, allowedTypes)
			return c.JSON(http.StatusForbidden, models.Response{
				Status:  http.StatusForbidden,
				Message: "Access denied for your user type",
			})
		}
	}
}

// moduleAllowed decides module access: super admins always pass, every other
// role (admins included) needs the module listed in its permission record.
func moduleAllowed(userType string, perm *models.ModulePermission, module string) bool {
	if userType == models.UserTypeSuperAdmin {
		return true
	}
	if perm == nil {
		return false
	}
	for _, m := range perm.Modules {
		if m == module {
			return true
		}
	}
	return false
}

// RequireModuleAccess restricts a route group to roles granted the named
// module via the modulePermissions collection. Only super admins bypass the
// lookup.
func RequireModuleAccess(db *mongo.Database, module string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			userType := ExtractUserType(c)
			if userType == models.UserTypeSuperAdmin {
				return next(c)
			}

			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			var perm models.ModulePermission
			err := db.Collection("modulePermissions").FindOne(ctx, bson.M{"role": userType}).Decode(&perm)
			if err != nil {
				return c.JSON(http.StatusForbidden, models.Response{
					Status:  http.StatusForbidden,
					Message: "No module permissions configured for your role",
				})
			}

			if !moduleAllowed(userType, &perm, module) {
				return c.JSON(http.StatusForbidden, models.Response{
					Status:  http.StatusForbidden,
					Message: "Access denied for module " + module,
				})
			}
			return next(c)
		}
	}
}

// ActivityTracker middleware updates the user's last activity timestamp
func ActivityTracker(db *mongo.Client) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			userID, err := ExtractUserID(c)
			if err != nil || userID == "" {
				return next(c)
			}

			objID, err := primitive.ObjectIDFromHex(userID)
			if err != nil {
				return next(c)
			}

			// Update in background, never block the request on it
			go func() {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()

				now := time.Now()
				config.GetCollection(db, "users").UpdateOne(ctx,
					bson.M{"_id": objID},
					bson.M{"$set": bson.M{
						"lastActivityAt": now,
						"isActive":       true,
						"updatedAt":      now,
					}})
			}()

			return next(c)
		}
	}
}

// MarkInactiveUsers marks users inactive after the given idle threshold
func MarkInactiveUsers(db *mongo.Client, inactiveThreshold time.Duration) {
	collection := config.GetCollection(db, "users")
	ctx := context.Background()

	cutoffTime := time.Now().Add(-inactiveThreshold)
	filter := bson.M{
		"isActive":       true,
		"lastActivityAt": bson.M{"$lt": cutoffTime},
	}
	collection.UpdateMany(ctx, filter, bson.M{"$set": bson.M{"isActive": false}})
}
