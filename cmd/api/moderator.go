package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	pg "pet-adoption-portal/internal/adapters/storage/postgres"
	"pet-adoption-portal/internal/domain/accounts"
)

func newCreateModeratorCmd(load loadFunc) *cobra.Command {
	var username, email, password string

	cmd := &cobra.Command{
		Use:   "create-moderator",
		Short: "Crea un usuario moderador (staff)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := load()
			if err != nil {
				return err
			}
			defer syncLogger(log)

			db, err := openDB(cmd.Context(), cfg.Database)
			if err != nil {
				return err
			}
			if db == nil {
				// En memoria el usuario se perdería al salir.
				return errors.New("database.dsn is required")
			}
			defer db.Close()

			// Sin issuer: aquí no se inicia sesión.
			svc := accounts.NewService(pg.NewUsersRepo(db), nil, accounts.WithLogger(log))
			u, err := svc.CreateModerator(cmd.Context(), username, email, password)
			if err != nil {
				var ve *accounts.ValidationError
				if errors.As(err, &ve) {
					return fmt.Errorf("%w: %v", err, ve.Fields)
				}
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "moderador creado: %s (%s)\n", u.Username, u.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&username, "username", "", "nombre de usuario")
	cmd.Flags().StringVar(&email, "email", "", "correo")
	cmd.Flags().StringVar(&password, "password", "", "contraseña (mínimo 8 caracteres)")
	_ = cmd.MarkFlagRequired("username")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}
