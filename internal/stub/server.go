// Package stub is a local stand-in for the banking API. It serves the auth
// and dashboard endpoints over in-memory users so the client can be run and
// tested without the real backend.
package stub

import (
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	fiberrecover "github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"
)

// Options configures a Server.
type Options struct {
	// Secret signs access tokens. Required.
	Secret []byte
	// TokenTTL is the access token lifetime. Defaults to one hour.
	TokenTTL time.Duration
	// BcryptCost overrides the password hashing cost. Tests lower it.
	BcryptCost int
	Log        *zap.Logger
}

// Server holds the stub's in-memory state.
type Server struct {
	users    *userStore
	secret   []byte
	tokenTTL time.Duration
	log      *zap.Logger
	now      func() time.Time
}

// New returns a Server with no users.
func New(opts Options) *Server {
	if opts.TokenTTL <= 0 {
		opts.TokenTTL = time.Hour
	}
	if opts.Log == nil {
		opts.Log = zap.NewNop()
	}
	return &Server{
		users:    newUserStore(opts.BcryptCost),
		secret:   opts.Secret,
		tokenTTL: opts.TokenTTL,
		log:      opts.Log,
		now:      time.Now,
	}
}

// Seed adds an account directly, bypassing the HTTP surface.
func (s *Server) Seed(name, email, password, role string) error {
	_, err := s.users.create(name, email, password, role)
	return err
}

// App builds the fiber application serving the API.
func (s *Server) App() *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "bankdash-stub",
		DisableStartupMessage: true,
		ErrorHandler:          s.handleError,
	})

	app.Use(fiberrecover.New())
	app.Use(s.requestLogger)

	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "healthy"})
	})

	auth := app.Group("/auth")
	auth.Post("/register", s.register)
	auth.Post("/login", s.login)

	app.Get("/dashboard/summary", s.requireBearer, s.dashboardSummary)

	return app
}

// detail answers with the {"detail": ...} body the client understands.
func detail(c *fiber.Ctx, status int, d any) error {
	return c.Status(status).JSON(fiber.Map{"detail": d})
}

func (s *Server) handleError(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	var fe *fiber.Error
	if errors.As(err, &fe) {
		status = fe.Code
	}
	if status >= 500 {
		s.log.Error("request failed", zap.String("path", c.Path()), zap.Error(err))
		return detail(c, status, "Internal Server Error")
	}
	return detail(c, status, err.Error())
}

func (s *Server) requestLogger(c *fiber.Ctx) error {
	start := time.Now()
	err := c.Next()
	s.log.Info("request",
		zap.String("method", c.Method()),
		zap.String("path", c.Path()),
		zap.Int("status", c.Response().StatusCode()),
		zap.String("request_id", c.Get("X-Request-ID")),
		zap.Duration("took", time.Since(start)),
	)
	return err
}

type registerRequest struct {
	Name     string `json:"name"`
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// fieldError is one entry of a validation failure list.
type fieldError struct {
	Loc  []string `json:"loc"`
	Msg  string   `json:"msg"`
	Type string   `json:"type"`
}

func missing(field string) fieldError {
	return fieldError{Loc: []string{"body", field}, Msg: field + " field required", Type: "value_error.missing"}
}

func (s *Server) register(c *fiber.Ctx) error {
	var req registerRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusUnprocessableEntity, "invalid request body")
	}
	if req.Name == "" {
		req.Name = req.FullName
	}
	var problems []fieldError
	if req.Name == "" {
		problems = append(problems, missing("name"))
	}
	if strings.TrimSpace(req.Email) == "" {
		problems = append(problems, missing("email"))
	}
	if req.Password == "" {
		problems = append(problems, missing("password"))
	}
	if len(problems) > 0 {
		return detail(c, fiber.StatusUnprocessableEntity, problems)
	}
	switch req.Role {
	case "":
		req.Role = "customer"
	case "customer", "admin", "auditor":
	default:
		return detail(c, fiber.StatusUnprocessableEntity, []fieldError{{
			Loc: []string{"body", "role"}, Msg: "unknown role", Type: "value_error",
		}})
	}

	u, err := s.users.create(req.Name, req.Email, req.Password, req.Role)
	if errors.Is(err, errUserExists) {
		return detail(c, fiber.StatusBadRequest, "User with email exists")
	}
	if err != nil {
		return err
	}
	tok, err := s.issueToken(u)
	if err != nil {
		return err
	}
	s.log.Info("user registered", zap.String("user_id", u.ID), zap.String("role", u.Role))
	return c.JSON(fiber.Map{"msg": "user created", "user": u, "token": tok})
}

func (s *Server) login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusUnprocessableEntity, "invalid request body")
	}
	var problems []fieldError
	if strings.TrimSpace(req.Email) == "" {
		problems = append(problems, missing("email"))
	}
	if req.Password == "" {
		problems = append(problems, missing("password"))
	}
	if len(problems) > 0 {
		return detail(c, fiber.StatusUnprocessableEntity, problems)
	}

	u, err := s.users.authenticate(req.Email, req.Password)
	if err != nil {
		return detail(c, fiber.StatusUnauthorized, "Invalid credentials")
	}
	tok, err := s.issueToken(u)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"access_token": tok, "token_type": "bearer"})
}

// requireBearer admits requests carrying a valid access token and stores its
// claims for the handler.
func (s *Server) requireBearer(c *fiber.Ctx) error {
	header := c.Get(fiber.HeaderAuthorization)
	scheme, raw, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "bearer") || strings.TrimSpace(raw) == "" {
		return detail(c, fiber.StatusForbidden, "Not authenticated")
	}
	cl, err := s.validateToken(strings.TrimSpace(raw))
	if err != nil {
		s.log.Debug("rejected token", zap.Error(err))
		return detail(c, fiber.StatusUnauthorized, "Invalid token")
	}
	c.Locals("claims", cl)
	return c.Next()
}

func (s *Server) dashboardSummary(c *fiber.Ctx) error {
	cl, ok := c.Locals("claims").(*claims)
	if !ok {
		return detail(c, fiber.StatusUnauthorized, "Invalid token")
	}
	return c.JSON(summary(cl.Role, s.now()))
}
