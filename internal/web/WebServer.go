package web

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/golang-jwt/jwt"

	"github.com/NeRF-or-Nothing/EnvironmentCreator/internal/common"
	"github.com/NeRF-or-Nothing/EnvironmentCreator/internal/log"
	"github.com/NeRF-or-Nothing/EnvironmentCreator/internal/models/environment"
	"github.com/NeRF-or-Nothing/EnvironmentCreator/internal/models/object"
	"github.com/NeRF-or-Nothing/EnvironmentCreator/internal/models/user"
	"github.com/NeRF-or-Nothing/EnvironmentCreator/internal/services"
)

type WebServer struct {
	jwtSecret     string
	jwtTTL        time.Duration
	app           *fiber.App
	clientService *services.ClientService
	logger        *log.Logger
}

func NewWebServer(jwtSecret string, jwtTTL time.Duration, clientService *services.ClientService, logger *log.Logger) *WebServer {
	app := fiber.New(fiber.Config{DisableStartupMessage: true})

	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Authorization, Content-Type",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
	}))

	s := &WebServer{
		jwtSecret:     jwtSecret,
		jwtTTL:        jwtTTL,
		app:           app,
		clientService: clientService,
		logger:        logger,
	}
	s.SetupRoutes()
	return s
}

// App exposes the fiber app, mainly for app.Test in handler tests.
func (s *WebServer) App() *fiber.App {
	return s.app
}

func (s *WebServer) Run(address string) error {
	s.logger.Infof("Listening on %s", address)
	return s.app.Listen(address)
}

func (s *WebServer) Shutdown() error {
	return s.app.Shutdown()
}

func (s *WebServer) SetupRoutes() {
	s.app.Post("/account/login", s.loginUser)
	s.app.Post("/account/register", s.registerUser)
	s.app.Get("/routes", s.getRoutes)
	s.app.Get("/health", s.healthCheck)

	api := s.app.Group("/api")
	api.Get("/environment", s.tokenRequired(s.listEnvironments))
	api.Post("/environment", s.tokenRequired(s.createEnvironment))
	api.Get("/environment/:environmentId", s.tokenRequired(s.getEnvironment))
	api.Delete("/environment/:environmentId", s.tokenRequired(s.deleteEnvironment))

	api.Post("/Objects", s.tokenRequired(s.createObject))
	api.Get("/Objects/environment/:environmentId", s.tokenRequired(s.listObjects))
	api.Get("/Objects/:objectId", s.tokenRequired(s.getObject))
	api.Put("/Objects/:objectId", s.tokenRequired(s.updateObject))
	api.Delete("/Objects/:objectId", s.tokenRequired(s.deleteObject))
}

func (s *WebServer) tokenRequired(handler fiber.Handler) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			s.logger.Info("Missing Authorization header")
			return c.Status(http.StatusUnauthorized).JSON(fiber.Map{"error": "Missing Authorization header"})
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			s.logger.Info("Invalid Authorization header format. Expected: `Bearer <token>`")
			return c.Status(http.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid Authorization header format. Expected: `Bearer <token>`"})
		}

		tokenString := parts[1]

		token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, errors.New("unexpected signing method")
			}
			return []byte(s.jwtSecret), nil
		})

		if err != nil || !token.Valid {
			s.logger.Info("Invalid token")
			return c.Status(http.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			s.logger.Info("Invalid token claims")
			return c.Status(http.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token claims"})
		}
		userID, ok := claims["sub"].(string)
		if !ok || userID == "" {
			s.logger.Info("Invalid user ID in token")
			return c.Status(http.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid user ID in token"})
		}

		exists, err := s.clientService.UserExists(c.UserContext(), userID)
		if err != nil {
			return s.fail(c, err)
		}
		if !exists {
			s.logger.Infof("Token for unknown user %s", userID)
			return c.Status(http.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
		}

		c.Locals("userID", userID)
		return handler(c)
	}
}

// statusFor maps service and store errors to HTTP status codes.
func statusFor(err error) int {
	var validationErrors validator.ValidationErrors
	switch {
	case errors.As(err, &validationErrors):
		return http.StatusBadRequest
	case errors.Is(err, services.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, user.ErrUserNoAccess):
		return http.StatusForbidden
	case errors.Is(err, environment.ErrEnvironmentNotFound),
		errors.Is(err, object.ErrObjectNotFound),
		errors.Is(err, user.ErrUserNotFound):
		return http.StatusNotFound
	case errors.Is(err, user.ErrUsernameTaken),
		errors.Is(err, services.ErrEnvironmentNameTaken),
		errors.Is(err, services.ErrEnvironmentLimit):
		return http.StatusConflict
	case errors.Is(err, environment.ErrInvalidName),
		errors.Is(err, environment.ErrInvalidWidth),
		errors.Is(err, environment.ErrInvalidHeight),
		errors.Is(err, object.ErrInvalidPrefab),
		errors.Is(err, object.ErrInvalidEnvironment),
		errors.Is(err, user.ErrPasswordTooShort),
		errors.Is(err, user.ErrPasswordNoLower),
		errors.Is(err, user.ErrPasswordNoUpper),
		errors.Is(err, user.ErrPasswordNoDigit),
		errors.Is(err, user.ErrPasswordNoSpecial):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// fail writes err as {"error": ...}. Internal errors are logged and not shown to the client.
func (s *WebServer) fail(c *fiber.Ctx, err error) error {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		s.logger.Errorf("%s %s failed: %v", c.Method(), c.Path(), err)
		return c.Status(status).JSON(common.ErrorResponse{Error: "internal server error"})
	}
	s.logger.Infof("%s %s rejected: %v", c.Method(), c.Path(), err)
	return c.Status(status).JSON(common.ErrorResponse{Error: err.Error()})
}

func userIDFrom(c *fiber.Ctx) string {
	userID, _ := c.Locals("userID").(string)
	return userID
}

func (s *WebServer) loginUser(c *fiber.Ctx) error {
	s.logger.Info("Login request received")

	var req common.LoginRequest
	if err := ValidateRequest(c, &req); err != nil {
		s.logger.Info("Login request validation failed:", err.Error())
		return c.Status(http.StatusBadRequest).JSON(common.ErrorResponse{Error: err.Error()})
	}

	userID, err := s.clientService.LoginUser(c.UserContext(), req.Username, req.Password)
	if err != nil {
		return s.fail(c, err)
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": userID,
		"iat": time.Now().Unix(),
		"exp": time.Now().Add(s.jwtTTL).Unix(),
	})
	tokenString, err := token.SignedString([]byte(s.jwtSecret))
	if err != nil {
		s.logger.Error("Failed to generate token")
		return c.Status(http.StatusInternalServerError).JSON(common.ErrorResponse{Error: "Failed to generate token"})
	}
	s.logger.Infof("JWT token generated, userID %s", userID)

	return c.Status(http.StatusOK).JSON(common.TokenResponse{Token: tokenString})
}

func (s *WebServer) registerUser(c *fiber.Ctx) error {
	s.logger.Info("Register request received")

	var req common.RegisterRequest
	if err := ValidateRequest(c, &req); err != nil {
		s.logger.Info("Register request validation failed:", err.Error())
		return c.Status(http.StatusBadRequest).JSON(common.ErrorResponse{Error: err.Error()})
	}

	if err := s.clientService.RegisterUser(c.UserContext(), req.Username, req.Password); err != nil {
		return s.fail(c, err)
	}

	s.logger.Info("User registered successfully")
	return c.Status(http.StatusCreated).JSON(fiber.Map{"message": "User created"})
}

func (s *WebServer) listEnvironments(c *fiber.Ctx) error {
	environments, err := s.clientService.ListEnvironments(c.UserContext(), userIDFrom(c))
	if err != nil {
		return s.fail(c, err)
	}
	if environments == nil {
		environments = []environment.Environment{}
	}
	return c.Status(http.StatusOK).JSON(environments)
}

func (s *WebServer) createEnvironment(c *fiber.Ctx) error {
	var req common.CreateEnvironmentRequest
	if err := ValidateRequest(c, &req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(common.ErrorResponse{Error: err.Error()})
	}

	env, err := s.clientService.CreateEnvironment(c.UserContext(), userIDFrom(c), req.Environment())
	if err != nil {
		return s.fail(c, err)
	}
	return c.Status(http.StatusCreated).JSON(env)
}

func (s *WebServer) getEnvironment(c *fiber.Ctx) error {
	var req common.EnvironmentIDRequest
	if err := ValidateRequest(c, &req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(common.ErrorResponse{Error: err.Error()})
	}

	env, err := s.clientService.GetEnvironment(c.UserContext(), userIDFrom(c), req.EnvironmentID)
	if err != nil {
		return s.fail(c, err)
	}
	return c.Status(http.StatusOK).JSON(env)
}

func (s *WebServer) deleteEnvironment(c *fiber.Ctx) error {
	var req common.EnvironmentIDRequest
	if err := ValidateRequest(c, &req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(common.ErrorResponse{Error: err.Error()})
	}

	if err := s.clientService.DeleteEnvironment(c.UserContext(), userIDFrom(c), req.EnvironmentID); err != nil {
		return s.fail(c, err)
	}
	return c.SendStatus(http.StatusNoContent)
}

func (s *WebServer) createObject(c *fiber.Ctx) error {
	var req common.CreateObjectRequest
	if err := ValidateRequest(c, &req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(common.ErrorResponse{Error: err.Error()})
	}

	obj, err := s.clientService.CreateObject(c.UserContext(), userIDFrom(c), req.Object())
	if err != nil {
		return s.fail(c, err)
	}
	return c.Status(http.StatusCreated).JSON(obj)
}

func (s *WebServer) listObjects(c *fiber.Ctx) error {
	var req common.EnvironmentIDRequest
	if err := ValidateRequest(c, &req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(common.ErrorResponse{Error: err.Error()})
	}

	objects, err := s.clientService.ListObjects(c.UserContext(), userIDFrom(c), req.EnvironmentID)
	if err != nil {
		return s.fail(c, err)
	}
	if objects == nil {
		objects = []object.PlacedObject{}
	}
	return c.Status(http.StatusOK).JSON(objects)
}

func (s *WebServer) getObject(c *fiber.Ctx) error {
	var req common.ObjectIDRequest
	if err := ValidateRequest(c, &req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(common.ErrorResponse{Error: err.Error()})
	}

	obj, err := s.clientService.GetObject(c.UserContext(), userIDFrom(c), req.ObjectID)
	if err != nil {
		return s.fail(c, err)
	}
	return c.Status(http.StatusOK).JSON(obj)
}

func (s *WebServer) updateObject(c *fiber.Ctx) error {
	var req common.UpdateObjectRequest
	if err := ValidateRequest(c, &req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(common.ErrorResponse{Error: err.Error()})
	}

	obj, err := s.clientService.UpdateObject(c.UserContext(), userIDFrom(c), req.ObjectID, req.Object())
	if err != nil {
		return s.fail(c, err)
	}
	return c.Status(http.StatusOK).JSON(obj)
}

func (s *WebServer) deleteObject(c *fiber.Ctx) error {
	var req common.ObjectIDRequest
	if err := ValidateRequest(c, &req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(common.ErrorResponse{Error: err.Error()})
	}

	if err := s.clientService.DeleteObject(c.UserContext(), userIDFrom(c), req.ObjectID); err != nil {
		return s.fail(c, err)
	}
	return c.SendStatus(http.StatusNoContent)
}

func (s *WebServer) getRoutes(c *fiber.Ctx) error {
	routes := make([]common.RouteInfo, 0)
	for _, r := range s.app.GetRoutes(true) {
		if r.Method == fiber.MethodHead || r.Method == fiber.MethodOptions {
			continue
		}
		routes = append(routes, common.RouteInfo{Method: r.Method, Path: r.Path})
	}
	return c.Status(http.StatusOK).JSON(routes)
}

func (s *WebServer) healthCheck(c *fiber.Ctx) error {
	return c.SendString("OK")
}
