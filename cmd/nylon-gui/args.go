package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Yat-Muk/nylon-gui/internal/application"
	"github.com/Yat-Muk/nylon-gui/internal/domain/bootstrap"
	"github.com/Yat-Muk/nylon-gui/internal/infra/elevation"
	"github.com/Yat-Muk/nylon-gui/internal/infra/update"
	"github.com/Yat-Muk/nylon-gui/internal/pkg/appctx"
	"github.com/Yat-Muk/nylon-gui/internal/pkg/version"
)

// accessAction 提權後的一次性授權
type accessAction interface {
	SetAccess(ctx context.Context, s *bootstrap.Session) bootstrap.ExitCode
}

// argRouter 帶參數啟動時的非交互路徑，不顯示任何界面
type argRouter struct {
	access  accessAction
	updater application.Updater
	paths   *appctx.Paths
	fs      afero.Fs
	out     io.Writer
	errOut  io.Writer
	log     *zap.Logger
}

func newArgRouter(access accessAction, updater application.Updater, fs afero.Fs, paths *appctx.Paths, out, errOut io.Writer, log *zap.Logger) *argRouter {
	return &argRouter{
		access:  access,
		updater: updater,
		paths:   paths,
		fs:      fs,
		out:     out,
		errOut:  errOut,
		log:     log,
	}
}

// Handle 解析參數並執行對應動作，解析失敗返回 -1
func (r *argRouter) Handle(ctx context.Context, s *bootstrap.Session, args []string) bootstrap.ExitCode {
	code := bootstrap.ExitSuccess

	root := r.rootCmd(s, &code)
	root.SetArgs(args)
	root.SetOut(r.out)
	root.SetErr(r.errOut)

	if err := root.ExecuteContext(ctx); err != nil {
		r.log.Error("參數處理失敗", zap.Strings("args", args), zap.Error(err))
		fmt.Fprintf(r.errOut, "錯誤: %v\n", err)
		return bootstrap.ExitFailure
	}
	return code
}

func (r *argRouter) rootCmd(s *bootstrap.Session, code *bootstrap.ExitCode) *cobra.Command {
	var (
		setAccess bool
		showVer   bool
	)

	root := &cobra.Command{
		Use:           "nylon-gui",
		Short:         "Guitar Hero III 的 Nylon 模組加載器管理工具",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			switch {
			case setAccess:
				*code = r.access.SetAccess(cmd.Context(), s)
			case showVer:
				fmt.Fprintln(cmd.OutOrStdout(), version.Info())
			default:
				return cmd.Help()
			}
			return nil
		},
	}

	root.Flags().BoolVar(&setAccess, strings.TrimPrefix(elevation.SetAccessMarker, "--"), false, "為遊戲目錄授予普通用戶寫入權限（需要管理員權限）")
	root.Flags().BoolVar(&showVer, "version", false, "顯示版本信息")
	root.MarkFlagsMutuallyExclusive(strings.TrimPrefix(elevation.SetAccessMarker, "--"), "version")

	root.AddCommand(r.updateCmd(s), r.pathsCmd(s))
	return root
}

func (r *argRouter) updateCmd(s *bootstrap.Session) *cobra.Command {
	var checkOnly bool

	cmd := &cobra.Command{
		Use:   "update",
		Short: "檢查並安裝最新的 Nylon",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			set := s.PathSet()
			if ok, _ := afero.DirExists(r.fs, set.GameDir); set.GameDir == "" || !ok {
				return fmt.Errorf("遊戲目錄未配置或不存在: %q", set.GameDir)
			}

			status, err := r.updater.CheckForUpdates(cmd.Context(), set)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), status)

			if checkOnly || status.State == update.UpToDate {
				return nil
			}

			if err := r.fs.MkdirAll(set.ModLoaderDir, 0755); err != nil {
				return fmt.Errorf("創建 Nylon 目錄失敗: %w", err)
			}
			if err := r.updater.InstallUpdate(cmd.Context(), set); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "已安裝 Nylon %s\n", r.updater.InstalledVersion(set))
			return nil
		},
	}

	cmd.Flags().BoolVar(&checkOnly, "check", false, "只檢查，不安裝")
	return cmd
}

func (r *argRouter) pathsCmd(s *bootstrap.Session) *cobra.Command {
	return &cobra.Command{
		Use:   "paths",
		Short: "顯示程序使用的目錄",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			set := s.PathSet()
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "work dir:      %s\n", r.paths.WorkDir)
			fmt.Fprintf(w, "config:        %s\n", r.paths.GUIConfigFile)
			fmt.Fprintf(w, "logs:          %s\n", r.paths.LogDir)
			fmt.Fprintf(w, "save data:     %s\n", set.SaveDir)
			fmt.Fprintf(w, "game:          %s\n", set.GameDir)
			fmt.Fprintf(w, "nylon:         %s\n", set.ModLoaderDir)
			fmt.Fprintf(w, "mods:          %s\n", set.ModsDir)
			fmt.Fprintf(w, "nylon config:  %s\n", set.LoaderConfigFile)
		},
	}
}
