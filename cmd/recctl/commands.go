package main

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/set-night/jewelbot/internal/config"
	"github.com/set-night/jewelbot/internal/conversation"
	"github.com/set-night/jewelbot/internal/domain"
	"github.com/set-night/jewelbot/internal/preview"
)

func newHealthCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check that the service answers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := opts.client().Health(cmd.Context()); err != nil {
				return err
			}
			p, err := opts.printer(cmd)
			if err != nil {
				return err
			}
			return p.status(true, "service is healthy")
		},
	}
}

func newUploadCmd(opts *options, defaults *config.Recommender) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "upload FILE...",
		Short: "Upload reference images and print the upload id",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			files, err := readFiles(args)
			if err != nil {
				return err
			}
			res, err := opts.client().Upload(cmd.Context(), files, opts.clientName, opts.notes)
			if err != nil {
				return err
			}
			p, err := opts.printer(cmd)
			if err != nil {
				return err
			}
			return p.upload(res)
		},
	}
	cmd.Flags().StringVar(&opts.clientName, "client-name", defaults.ClientName, "client name sent with the upload (CLIENT_NAME)")
	cmd.Flags().StringVar(&opts.notes, "notes", defaults.UploadNotes, "upload notes (UPLOAD_NOTES)")
	return cmd
}

func newRecommendCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "recommend [UPLOAD_ID]",
		Short: "Fetch recommendations for an upload, or from text alone",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			uploadID := ""
			if len(args) == 1 {
				uploadID = args[0]
			}
			rec, err := opts.client().Recommend(cmd.Context(), uploadID, opts.refine)
			if err != nil {
				return err
			}
			p, err := opts.printer(cmd)
			if err != nil {
				return err
			}
			return p.products(rec.Products, rec.Message)
		},
	}
	cmd.Flags().StringVarP(&opts.refine, "refine", "r", "", "refinement text")
	return cmd
}

// newAskCmd runs one full conversation turn the way the bot does: stage,
// send, and print the resulting transcript.
func newAskCmd(opts *options, defaults *config.Recommender) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ask [FILE...]",
		Short: "Run one upload-then-recommend turn and print the transcript",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 && opts.refine == "" {
				return fmt.Errorf("give at least one image or --refine text")
			}
			files, err := readFiles(args)
			if err != nil {
				return err
			}

			dir, err := os.MkdirTemp("", "recctl-previews-")
			if err != nil {
				return fmt.Errorf("create preview dir: %w", err)
			}
			defer os.RemoveAll(dir)
			previews, err := preview.NewDiskStore(dir)
			if err != nil {
				return err
			}

			sess := conversation.NewSession(conversation.SessionDeps{
				Previews:       previews,
				Remote:         opts.client(),
				MaxAttachments: len(files) + 1,
				Sequencer: conversation.SequencerConfig{
					ClientName:     opts.clientName,
					UploadNotes:    opts.notes,
					RequestTimeout: opts.timeout,
				},
			})
			defer sess.Close()

			if len(files) > 0 {
				if _, err := sess.Staging.Stage(files); err != nil {
					return err
				}
			}
			sendErr := sess.Sequencer.Send(cmd.Context(), opts.refine)

			p, err := opts.printer(cmd)
			if err != nil {
				return err
			}
			if err := p.transcript(sess.Log.Snapshot()); err != nil {
				return err
			}
			return sendErr
		},
	}
	cmd.Flags().StringVarP(&opts.refine, "refine", "r", "", "refinement text")
	cmd.Flags().StringVar(&opts.clientName, "client-name", defaults.ClientName, "client name sent with the upload (CLIENT_NAME)")
	cmd.Flags().StringVar(&opts.notes, "notes", defaults.UploadNotes, "upload notes (UPLOAD_NOTES)")
	return cmd
}

func newSelectCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "select PRODUCT_ID",
		Short: "Add a product to the service-side selection",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := opts.client().Select(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			p, err := opts.printer(cmd)
			if err != nil {
				return err
			}
			return p.status(res.OK, res.Message)
		},
	}
}

func newCartCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "cart",
		Short: "Show the service-side selection",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			products, err := opts.client().Cart(cmd.Context())
			if err != nil {
				return err
			}
			p, err := opts.printer(cmd)
			if err != nil {
				return err
			}
			return p.products(products, "")
		},
	}
}

func readFiles(paths []string) ([]domain.FileHandle, error) {
	files := make([]domain.FileHandle, 0, len(paths))
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		mime := http.DetectContentType(data)
		if !domain.IsImageMime(mime) {
			return nil, fmt.Errorf("%s: %w: %s", path, domain.ErrUnsupportedFileType, mime)
		}
		files = append(files, domain.NewMemoryFile(filepath.Base(path), mime, data))
	}
	return files, nil
}
