package main

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/javaniecampbell/storymap/internal/board"
	"github.com/javaniecampbell/storymap/internal/client"
	"github.com/javaniecampbell/storymap/internal/lib/utils"
	"github.com/javaniecampbell/storymap/internal/model"
)

var boardFlags struct {
	server   string
	email    string
	password string
	from     string
	to       string
	verbose  bool
}

var boardCmd = &cobra.Command{
	Use:   "board",
	Short: "Inspect and rearrange a project's story map on a running server",
}

var boardShowCmd = &cobra.Command{
	Use:   "show PROJECT_ID",
	Short: "Print the board columns",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		r, err := openBoard(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return printBoard(r.Store())
	},
}

var boardMoveStoryCmd = &cobra.Command{
	Use:   "move-story PROJECT_ID STORY_ID TYPE",
	Short: "Move a story to another column (EPIC, FEATURE or STORY)",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		r, err := openBoard(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		story, ok := r.Store().Story(args[1])
		if !ok {
			return fmt.Errorf("story %s is not on the board", args[1])
		}

		ops, err := r.Drop(cmd.Context(), board.StoryDrop{
			StoryID:     story.ID,
			Source:      story.Type,
			Destination: board.To(model.StoryType(args[2])),
		})
		if err != nil {
			return err
		}
		return settle(r, ops)
	},
}

var boardMovePersonaCmd = &cobra.Command{
	Use:   "move-persona PROJECT_ID PERSONA_ID",
	Short: "Move a persona between stories; an empty --from or --to is the unassigned pool",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		r, err := openBoard(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		ops, err := r.Drop(cmd.Context(), board.PersonaDrop{
			PersonaID:   args[1],
			Source:      slot(boardFlags.from),
			Destination: board.To(slot(boardFlags.to)),
		})
		if err != nil {
			return err
		}
		return settle(r, ops)
	},
}

func init() {
	flags := boardCmd.PersistentFlags()
	flags.StringVar(&boardFlags.server, "server", "http://localhost:8080", "storymap server url")
	flags.StringVar(&boardFlags.email, "email", os.Getenv("STORYMAP_EMAIL"), "account email")
	flags.StringVar(&boardFlags.password, "password", os.Getenv("STORYMAP_PASSWORD"), "account password")
	flags.BoolVarP(&boardFlags.verbose, "verbose", "v", false, "log every request")

	boardMovePersonaCmd.Flags().StringVar(&boardFlags.from, "from", "", "story the persona is on")
	boardMovePersonaCmd.Flags().StringVar(&boardFlags.to, "to", "", "story to put the persona on")

	boardCmd.AddCommand(boardShowCmd, boardMoveStoryCmd, boardMovePersonaCmd)
}

func slot(storyID string) board.PersonaSlot {
	if storyID == "" {
		return board.Unassigned
	}
	return board.OnStory(storyID)
}

func openBoard(ctx context.Context, projectID string) (*board.Reconciler, error) {
	c, err := client.New(boardFlags.server)
	if err != nil {
		return nil, err
	}
	if err := c.Login(ctx, boardFlags.email, boardFlags.password); err != nil {
		return nil, fmt.Errorf("login failed: %w", err)
	}

	detail, err := c.Project(ctx, projectID)
	if err != nil {
		return nil, err
	}

	level := zerolog.WarnLevel
	if boardFlags.verbose {
		level = zerolog.DebugLevel
	}
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(level).With().Timestamp().Logger()

	return board.NewReconciler(projectID, board.NewStore(detail.Stories, detail.Personas), c, board.WithLogger(log)), nil
}

type column struct {
	Type    model.StoryType   `json:"type"`
	Stories []model.UserStory `json:"stories"`
}

func printBoard(store *board.Store) error {
	columns := make([]column, 0, len(model.StoryTypes))
	for _, t := range model.StoryTypes {
		stories := store.Column(t)
		if stories == nil {
			stories = []model.UserStory{}
		}
		columns = append(columns, column{Type: t, Stories: stories})
	}
	return utils.PrintJSON(os.Stdout, map[string]any{
		"columns":  columns,
		"personas": store.Personas(),
	})
}

// settle waits for the drop's requests and reports the first failure.
func settle(r *board.Reconciler, ops []*board.Operation) error {
	r.Wait()
	if len(ops) == 0 {
		fmt.Fprintln(os.Stderr, "nothing to do")
	}
	for _, op := range ops {
		if err := op.Err(); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
	}
	return printBoard(r.Store())
}
