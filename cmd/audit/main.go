// Command audit verifies and repairs hierarchy consistency against the
// configured store, and issues access tokens for operators.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"
	"github.com/vicky2929-er/student-smart-hub-sub002/internal/app/services"
	"github.com/vicky2929-er/student-smart-hub-sub002/internal/bootstrap"
	"github.com/vicky2929-er/student-smart-hub-sub002/internal/pkg/auth"
	"github.com/vicky2929-er/student-smart-hub-sub002/internal/pkg/helpers"
	"github.com/vicky2929-er/student-smart-hub-sub002/internal/pkg/logger"
)

// exitViolations is returned by verify when the report is not clean.
const exitViolations = 3

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newApp(os.Stdout).RunContext(ctx, os.Args); err != nil {
		if coder, ok := err.(cli.ExitCoder); ok {
			fmt.Fprintln(os.Stderr, coder.Error())
			os.Exit(coder.ExitCode())
		}
		logger.Error().Err(err).Msg("audit failed")
		os.Exit(1)
	}
}

var instituteFlag = &cli.StringFlag{
	Name:    "institute",
	Aliases: []string{"i"},
	Usage:   "limit the run to one institute `ID` (default: every institute)",
}

func newApp(out io.Writer) *cli.App {
	return &cli.App{
		Name:      "audit",
		Usage:     "hierarchy consistency tooling",
		Writer:    out,
		ErrWriter: os.Stderr,

		// exit codes are handled in main
		ExitErrHandler: func(*cli.Context, error) {},

		// stdout carries the JSON result only
		Before: func(c *cli.Context) error {
			logger.SetOutput(c.App.ErrWriter)
			return nil
		},

		Commands: []*cli.Command{
			{
				Name:  "verify",
				Usage: "report hierarchy invariant violations without writing",
				Flags: []cli.Flag{instituteFlag},
				Action: func(c *cli.Context) error {
					hierarchy, closeStore, err := openHierarchy(c.Context)
					if err != nil {
						return err
					}
					defer closeStore()

					report, err := hierarchy.VerifyConsistency(c.Context, services.AuditScope{InstituteID: c.String("institute")})
					if err != nil {
						return err
					}
					logViolations("Violation found", report.Violations)
					if err := writeJSON(c.App.Writer, report); err != nil {
						return err
					}
					if !report.Clean() {
						return cli.Exit(fmt.Sprintf("%d violation(s) found", len(report.Violations)), exitViolations)
					}
					return nil
				},
			},
			{
				Name:  "repair",
				Usage: "apply deterministic fixes for reported violations",
				Flags: []cli.Flag{instituteFlag},
				Action: func(c *cli.Context) error {
					hierarchy, closeStore, err := openHierarchy(c.Context)
					if err != nil {
						return err
					}
					defer closeStore()

					result, err := hierarchy.Repair(c.Context, services.AuditScope{InstituteID: c.String("institute")})
					if err != nil {
						return err
					}
					logViolations("Violation repaired", result.Applied)
					logViolations("Violation needs manual repair", result.Skipped)
					return writeJSON(c.App.Writer, result)
				},
			},
			{
				Name:  "token",
				Usage: "issue an access token for tooling",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "subject", Usage: "subject `ID`", Required: true},
					&cli.StringFlag{Name: "email", Usage: "subject email"},
					&cli.StringFlag{Name: "role", Value: string(auth.RoleSuperAdmin), Usage: "superadmin, institute, faculty or student"},
				},
				Action: func(c *cli.Context) error {
					cfg, _, err := bootstrap.LoadConfigAndSetupLogger()
					if err != nil {
						return err
					}
					role := auth.Role(c.String("role"))
					if !role.IsValid() {
						return cli.Exit(fmt.Sprintf("unknown role %q", role), 2)
					}
					jwtService := auth.NewJWTService(auth.JWTConfig{
						SecretKey:      cfg.JWT.Secret,
						AccessTokenExp: helpers.ParseDuration(cfg.JWT.AccessTokenExpiration, 24*time.Hour),
						TokenIssuer:    cfg.JWT.Issuer,
					})
					token, expiresIn, err := jwtService.GenerateToken(c.String("subject"), c.String("email"), role)
					if err != nil {
						return err
					}
					return writeJSON(c.App.Writer, map[string]interface{}{"accessToken": token, "expiresIn": expiresIn})
				},
			},
		},
	}
}

func openHierarchy(ctx context.Context) (*services.HierarchyService, func(), error) {
	cfg, lgr, err := bootstrap.LoadConfigAndSetupLogger()
	if err != nil {
		return nil, nil, err
	}
	store, err := bootstrap.SetupStore(ctx, cfg, lgr)
	if err != nil {
		return nil, nil, err
	}
	return services.NewHierarchyService(store.Entities, services.SystemClock), store.Close, nil
}

func logViolations(msg string, violations []services.Violation) {
	for _, v := range violations {
		fields := map[string]interface{}{
			"kind":    string(v.Kind),
			"subject": v.Subject.String(),
		}
		if v.Edge != "" {
			fields["edge"] = string(v.Edge)
		}
		if v.Related != nil {
			fields["related"] = v.Related.String()
		}
		l := logger.WithFields(fields)
		l.Warn().Msg(msg + ": " + v.Message)
	}
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
