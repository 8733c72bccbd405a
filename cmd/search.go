package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"jobcompass/internal/digest"
	"jobcompass/internal/docgen"
	"jobcompass/internal/reconcile"
	"jobcompass/internal/storage"
)

const (
	PromptApplied             = "I applied to this one"
	PromptNotInterested       = "Not interested"
	PromptGenerateCoverLetter = "Generate a cover letter"
	PromptGenerateResume      = "Generate a resume draft"
	PromptSave                = "Save for later"
	PromptNext                = "Next vacancy"
	PromptQuit                = "Quit"
)

var errQuit = errors.New("quit requested")

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Interactively go through fresh vacancies for one recipient",
	Run: func(cmd *cobra.Command, _ []string) {
		runSearch(cmd)
	},
}

func init() {
	rootCmd.AddCommand(searchCmd)

	searchCmd.Flags().String("chat-id", "", "chat id of the recipient to search for")
	searchCmd.MarkFlagRequired("chat-id")
}

func runSearch(cmd *cobra.Command) {
	ctx := context.Background()

	svc := bootstrap(ctx)
	defer svc.close()

	chatID := cmd.Flag("chat-id").Value.String()

	recipient, err := svc.store.GetByChatID(ctx, chatID)
	if err != nil {
		svc.logger.Fatal("looking up recipient", zap.String("chat_id", chatID), zap.Error(err))
	}

	criteria, err := svc.store.CriteriaFor(ctx, recipient.ID)
	if err != nil {
		svc.logger.Fatal("looking up search criteria",
			zap.Int64("recipient_id", recipient.ID),
			zap.Error(err),
		)
	}

	generator, err := newDocGenerator(ctx, svc.config, svc.logger)
	if err != nil {
		svc.logger.Fatal("creating document generator", zap.Error(err))
	}

	page, err := svc.flow.Run(ctx, recipient.ID, criteria)
	if err != nil {
		svc.logger.Fatal("running search", zap.Error(err))
	}

	if len(page) == 0 {
		svc.logger.Info("exiting", zap.String("reason", "no new vacancies for this search"))
		return
	}

	for i, match := range page {
		fmt.Println(digest.FormatListing(i+1, match.Listing))

		if err := handleVacancy(ctx, svc, recipient, generator, match); err != nil {
			if errors.Is(err, errQuit) {
				return
			}
			svc.logger.Fatal("exiting", zap.Error(err))
		}
	}
}

func handleVacancy(ctx context.Context, svc *services, recipient *storage.Recipient, generator docgen.Generator, match reconcile.Match) error {
	for {
		prompt := promptui.Select{
			Label: "What would you like to do?",
			Items: []string{
				PromptApplied,
				PromptNotInterested,
				PromptGenerateCoverLetter,
				PromptGenerateResume,
				PromptSave,
				PromptNext,
				PromptQuit,
			},
		}

		_, action, err := prompt.Run()
		if err != nil {
			return err
		}

		switch action {
		case PromptApplied:
			return updateStatus(ctx, svc, recipient.ID, match.Listing.ID, storage.StatusViewed)
		case PromptNotInterested:
			return updateStatus(ctx, svc, recipient.ID, match.Listing.ID, storage.StatusNotInterested)
		case PromptGenerateCoverLetter:
			if err := generateDocument(ctx, svc, recipient, generator, match.Listing, storage.DocumentCoverLetter); err != nil {
				return err
			}
		case PromptGenerateResume:
			if err := generateDocument(ctx, svc, recipient, generator, match.Listing, storage.DocumentResume); err != nil {
				return err
			}
		case PromptSave:
			// The listing is already in the ledger as SENT; saving is an
			// acknowledgement, not a state change.
			svc.logger.Info("saved for later", zap.Int64("listing_id", match.Listing.ID))
		case PromptNext:
			return nil
		case PromptQuit:
			return errQuit
		default:
			return fmt.Errorf("invalid action: %s", action)
		}
	}
}

func updateStatus(ctx context.Context, svc *services, recipientID, listingID int64, status storage.Status) error {
	sess, err := svc.store.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin session: %w", err)
	}
	defer sess.Rollback(ctx)

	if err := sess.Ledger().UpdateStatus(ctx, recipientID, listingID, status); err != nil {
		return err
	}
	if err := sess.Commit(ctx); err != nil {
		return fmt.Errorf("commit status update: %w", err)
	}

	svc.logger.Info("status updated",
		zap.Int64("listing_id", listingID),
		zap.String("status", string(status)),
	)

	return nil
}

func generateDocument(ctx context.Context, svc *services, recipient *storage.Recipient, generator docgen.Generator, l *storage.Listing, kind storage.DocumentKind) error {
	content, err := generator.Generate(ctx, kind, recipient, l)
	if err != nil {
		if errors.Is(err, docgen.ErrInsufficientData) {
			svc.logger.Warn("cannot generate document",
				zap.Error(err),
				zap.String("hint", "fill in skills or a base resume in the recipient profile"),
			)
			return nil
		}
		return err
	}

	doc := &storage.Document{
		RecipientID: recipient.ID,
		ListingID:   l.ID,
		Kind:        kind,
		Content:     content,
	}
	if err := svc.store.SaveDocument(ctx, doc); err != nil {
		return err
	}

	fmt.Println(content)
	svc.logger.Info("document saved", zap.Int64("document_id", doc.ID), zap.String("kind", string(kind)))

	return nil
}
