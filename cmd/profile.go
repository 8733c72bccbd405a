package cmd

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"jobcompass/internal/storage"
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Create or update a recipient profile and their saved search",
	Run: func(cmd *cobra.Command, _ []string) {
		runProfile(cmd)
	},
}

func init() {
	rootCmd.AddCommand(profileCmd)

	profileCmd.Flags().String("chat-id", "", "chat id of the recipient")
	profileCmd.MarkFlagRequired("chat-id")
}

func runProfile(cmd *cobra.Command) {
	ctx := context.Background()

	svc := bootstrap(ctx)
	defer svc.close()

	chatID := cmd.Flag("chat-id").Value.String()

	recipient := &storage.Recipient{ChatID: chatID}
	if existing, err := svc.store.GetByChatID(ctx, chatID); err == nil {
		recipient = existing
	} else if !errors.Is(err, storage.ErrNotFound) {
		svc.logger.Fatal("looking up recipient", zap.Error(err))
	}

	var err error
	if recipient.FullName, err = ask("Full name", recipient.FullName); err != nil {
		svc.logger.Fatal("exiting", zap.Error(err))
	}
	if recipient.City, err = ask("City", recipient.City); err != nil {
		svc.logger.Fatal("exiting", zap.Error(err))
	}
	if recipient.DesiredPosition, err = ask("Desired position", recipient.DesiredPosition); err != nil {
		svc.logger.Fatal("exiting", zap.Error(err))
	}
	if recipient.Skills, err = ask("Skills (comma-separated)", recipient.Skills); err != nil {
		svc.logger.Fatal("exiting", zap.Error(err))
	}

	if err := svc.store.SaveProfile(ctx, recipient); err != nil {
		svc.logger.Fatal("saving profile", zap.Error(err))
	}

	criteria := &storage.SearchCriteria{RecipientID: recipient.ID}
	if existing, err := svc.store.CriteriaFor(ctx, recipient.ID); err == nil {
		criteria = existing
	} else if !errors.Is(err, storage.ErrNotFound) {
		svc.logger.Fatal("looking up search criteria", zap.Error(err))
	}

	if criteria.Position, err = ask("Search position", firstNonEmpty(criteria.Position, recipient.DesiredPosition)); err != nil {
		svc.logger.Fatal("exiting", zap.Error(err))
	}
	if criteria.City, err = ask("Search city", firstNonEmpty(criteria.City, recipient.City)); err != nil {
		svc.logger.Fatal("exiting", zap.Error(err))
	}
	if criteria.MinSalary, err = askInt("Minimum salary (0 for any)", criteria.MinSalary); err != nil {
		svc.logger.Fatal("exiting", zap.Error(err))
	}
	if criteria.Remote, err = askYesNo("Remote only?", criteria.Remote); err != nil {
		svc.logger.Fatal("exiting", zap.Error(err))
	}

	if err := svc.store.SaveCriteria(ctx, criteria); err != nil {
		svc.logger.Fatal("saving search criteria", zap.Error(err))
	}

	svc.logger.Info("profile saved",
		zap.Int64("recipient_id", recipient.ID),
		zap.String("chat_id", chatID),
		zap.String("search", criteria.Position),
	)
}

func ask(label, current string) (string, error) {
	prompt := promptui.Prompt{
		Label:     label,
		Default:   current,
		AllowEdit: true,
	}
	return prompt.Run()
}

func askInt(label string, current int) (int, error) {
	prompt := promptui.Prompt{
		Label:     label,
		Default:   strconv.Itoa(current),
		AllowEdit: true,
		Validate: func(input string) error {
			if _, err := strconv.Atoi(input); err != nil {
				return fmt.Errorf("must be a number")
			}
			return nil
		},
	}

	raw, err := prompt.Run()
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(raw)
}

func askYesNo(label string, current bool) (bool, error) {
	pos := 1
	if current {
		pos = 0
	}
	prompt := promptui.Select{
		Label:     label,
		Items:     []string{"Yes", "No"},
		CursorPos: pos,
	}

	_, answer, err := prompt.Run()
	if err != nil {
		return false, err
	}
	return answer == "Yes", nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
