package cmd

import (
	"errors"
	"fmt"

	"mediagate/core/auth"
	"mediagate/db"
	"mediagate/model"
	"mediagate/repository"

	"github.com/spf13/cobra"
)

var (
	adminUsername string
	adminPassword string
	adminCode     string

	accessCode    string
	accessIsAdmin bool
)

var adminCmd = &cobra.Command{
	Use:   "admin",
	Short: "管理员账号管理",
}

var adminAddCmd = &cobra.Command{
	Use:   "add",
	Short: "添加管理员",
	RunE: func(cmd *cobra.Command, args []string) error {
		if adminUsername == "" || adminPassword == "" {
			return errors.New("--username and --password are required")
		}
		a, err := openDB(cfg)
		if err != nil {
			return err
		}
		defer a.Close()
		if err := db.Migrate(a.db); err != nil {
			return err
		}

		hash, err := auth.HashPassword(adminPassword, cfg.BcryptCost)
		if err != nil {
			return err
		}
		admin := &model.AdminUser{Username: adminUsername, PasswordHash: hash}
		if adminCode != "" {
			admin.AdminCode = &adminCode
		}
		id, err := repository.NewAdminRepository(a.db).Create(cmd.Context(), admin)
		if err != nil {
			return err
		}
		fmt.Printf("管理员已创建: id=%d username=%s\n", id, adminUsername)
		return nil
	},
}

var codeCmd = &cobra.Command{
	Use:   "code",
	Short: "访问码管理",
}

var codeAddCmd = &cobra.Command{
	Use:   "add",
	Short: "添加访问码",
	RunE: func(cmd *cobra.Command, args []string) error {
		if accessCode == "" {
			return errors.New("--code is required")
		}
		a, err := openDB(cfg)
		if err != nil {
			return err
		}
		defer a.Close()
		if err := db.Migrate(a.db); err != nil {
			return err
		}

		id, err := repository.NewUserRepository(a.db).Create(cmd.Context(), &model.User{Code: accessCode, IsAdmin: accessIsAdmin})
		if err != nil {
			return err
		}
		fmt.Printf("访问码已创建: id=%d isAdmin=%t\n", id, accessIsAdmin)
		return nil
	},
}

func init() {
	adminAddCmd.Flags().StringVar(&adminUsername, "username", "", "管理员用户名")
	adminAddCmd.Flags().StringVar(&adminPassword, "password", "", "管理员密码")
	adminAddCmd.Flags().StringVar(&adminCode, "code", "", "管理员访问码 (可选)")
	adminCmd.AddCommand(adminAddCmd)

	codeAddCmd.Flags().StringVar(&accessCode, "code", "", "访问码")
	codeAddCmd.Flags().BoolVar(&accessIsAdmin, "admin", false, "该访问码是否拥有管理员权限")
	codeCmd.AddCommand(codeAddCmd)

	rootCmd.AddCommand(adminCmd, codeCmd)
}
