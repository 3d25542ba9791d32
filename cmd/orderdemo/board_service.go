package main

import (
	"github.com/spf13/cobra"

	"github.com/totegamma/orderdemo/internal/infra/repository"
	"github.com/totegamma/orderdemo/internal/present/rest"
	"github.com/totegamma/orderdemo/internal/usecase"
)

const boardServiceName = "board-service"

var boardServiceCmd = &cobra.Command{
	Use:   "board-service",
	Short: "Serve the post and comment board",
	RunE:  runBoardService,
}

func init() {
	rootCmd.AddCommand(boardServiceCmd)
}

func runBoardService(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext(cmd)
	defer cancel()

	a, err := setup(ctx, boardServiceName, nil)
	if err != nil {
		return err
	}

	board := usecase.NewBoardUsecase(repository.NewBoardRepository())

	e := a.newEcho(boardServiceName)
	rest.NewBoardHandler(board).RegisterRoutes(e)

	return a.serve(ctx, e, a.conf.BoardService.Listen)
}
