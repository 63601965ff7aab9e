package main

import (
	"fmt"
	"os"
	"time"

	"seatsnag/internal/auth"
	"seatsnag/pkg/config"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "tokengen",
		Usage: "print a signed SeatSnag admin token",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "role",
				Usage: "company_admin or super_admin",
				Value: auth.RoleCompanyAdmin.String(),
			},
			&cli.StringFlag{
				Name:  "tenant",
				Usage: "company id the token is scoped to (company_admin only)",
			},
			&cli.StringFlag{
				Name:     "email",
				Usage:    "email of the administrator",
				Required: true,
			},
			&cli.StringFlag{
				Name:  "name",
				Usage: "display name of the administrator",
			},
			&cli.DurationFlag{
				Name:  "ttl",
				Usage: "token lifetime",
				Value: 24 * time.Hour,
			},
		},
		Action: generate,
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "tokengen:", err)
		os.Exit(1)
	}
}

func generate(c *cli.Context) error {
	// A missing .env is fine; the secret may come from the environment.
	_ = godotenv.Load()

	cfg, err := config.Build()
	if err != nil {
		return err
	}
	if cfg.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET must be set")
	}

	role, err := auth.ParseRole(c.String("role"))
	if err != nil {
		return err
	}
	email := c.String("email")

	switch role {
	case auth.RoleEmployee:
		return fmt.Errorf("employee tokens are issued at login, not by tokengen")
	case auth.RoleCompanyAdmin:
		if c.String("tenant") == "" {
			return fmt.Errorf("--tenant is required for %s", role)
		}
	case auth.RoleSuperAdmin:
		if !cfg.IsSuperAdmin(email) {
			return fmt.Errorf("%s is not listed in SUPER_ADMIN_EMAILS", email)
		}
	}

	a := auth.New(auth.Config{
		Secret: cfg.JWTSecret,
		Issuer: cfg.JWTIssuer,
		TTL:    c.Duration("ttl"),
	})
	token, err := a.GenerateToken(auth.Claims{
		TenantID: c.String("tenant"),
		Name:     c.String("name"),
		Email:    email,
		Role:     role.String(),
	})
	if err != nil {
		return err
	}

	fmt.Fprintln(c.App.Writer, token)
	return nil
}
