package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ispoms/oms-console/internal/core/ports"
	"github.com/ispoms/oms-console/internal/core/service"
	"github.com/ispoms/oms-console/internal/infrastructure/config"
	"github.com/ispoms/oms-console/internal/infrastructure/rolecatalog"
)

type seedOptions struct {
	in       ports.RegisterInput
	verified bool
}

func newSeedUserCmd() *cobra.Command {
	var opts seedOptions
	cmd := &cobra.Command{
		Use:   "seed-user",
		Short: "Create an operator account in the identity directory",
		Example: `  omsconsole seed-user --email admin@ispoms.com --password 'change-me' \
    --first-name Ada --last-name Admin --role Administrator --verified`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(cmd.Context())
			if err != nil {
				return err
			}
			if !cfg.Directory.Enabled {
				return fmt.Errorf("the identity directory is disabled (DIRECTORY_ENABLED=false)")
			}
			log := initLogger(cfg)

			b, err := openBackends(cmd.Context(), cfg, log)
			if err != nil {
				return err
			}
			defer func() { _ = b.close(context.WithoutCancel(cmd.Context())) }()

			roles, err := rolecatalog.Load(cfg.Directory.RoleCatalogPath)
			if err != nil {
				return err
			}
			dir := service.NewDirectoryService(b.accounts, b.verification, roles, service.DirectoryConfig{
				JWTSecret:       cfg.Directory.JWTSecret,
				FederatedSecret: cfg.Directory.FederatedSecret,
				TokenTTL:        cfg.Directory.TokenTTL,
				VerificationTTL: cfg.Directory.VerificationTTL,
			}, log)

			return seedUser(cmd, dir, opts)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.in.Email, "email", "", "account email")
	f.StringVar(&opts.in.Password, "password", "", "account password")
	f.StringVar(&opts.in.FirstName, "first-name", "", "first name")
	f.StringVar(&opts.in.LastName, "last-name", "", "last name")
	f.StringVar(&opts.in.Phone, "phone", "", "phone number")
	f.StringVar(&opts.in.Role, "role", "Viewer", "role name from the catalog")
	f.BoolVar(&opts.verified, "verified", false, "mark the email as verified")
	for _, name := range []string{"email", "password", "first-name", "last-name"} {
		_ = cmd.MarkFlagRequired(name)
	}
	return cmd
}

func seedUser(cmd *cobra.Command, dir ports.DirectoryService, opts seedOptions) error {
	ctx := cmd.Context()
	reg, err := dir.Register(ctx, opts.in)
	if err != nil {
		return fmt.Errorf("register %s: %w", opts.in.Email, err)
	}

	if opts.verified {
		if err := dir.VerifyEmail(ctx, reg.VerificationToken); err != nil {
			return fmt.Errorf("verify %s: %w", opts.in.Email, err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "created %s (%s) role=%s verified\n", reg.Account.Email, reg.Account.ID, reg.Account.RoleName)
		return nil
	}

	fmt.Fprintf(cmd.OutOrStdout(), "created %s (%s) role=%s verification_token=%s\n",
		reg.Account.Email, reg.Account.ID, reg.Account.RoleName, reg.VerificationToken)
	return nil
}
