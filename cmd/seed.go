package cmd

import (
	"fmt"

	"rewards/application"
	"rewards/config"
	"rewards/domain/entities"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(seedCmd)
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Insert or update the sample mission, prize and product catalog",
	Args:  cobra.NoArgs,
	RunE:  runSeed,
}

func runSeed(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd.Context(), config.Get())
	if err != nil {
		return err
	}
	defer a.Close()

	catalog := sampleCatalog()
	if err := application.NewCatalogHandler(a.deps).Upsert(cmd.Context(), catalog); err != nil {
		return fmt.Errorf("failed to seed catalog: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "seeded %d missions, %d prizes, %d products\n",
		len(catalog.Missions), len(catalog.Prizes), len(catalog.Products))
	return nil
}

func sampleCatalog() application.Catalog {
	limit := func(n int) *int { return &n }

	missions := []*entities.Mission{
		{ID: "daily-attendance", Title: "Daily check-in", MissionType: entities.MissionTypeDailyAttendance, DailyLimit: limit(1), RewardAmount: 10, RewardCurrency: entities.CurrencyPoints},
		{ID: "watch-ad", Title: "Watch an ad", MissionType: entities.MissionTypeWatchAd, DailyLimit: limit(5), RewardAmount: 1, RewardCurrency: entities.CurrencyTickets},
		{ID: "spelling", Title: "Spelling game", MissionType: entities.MissionTypeMinigameSpelling, DailyLimit: limit(3), RewardAmount: 20, RewardCurrency: entities.CurrencyPoints},
		{ID: "number", Title: "Number game", MissionType: entities.MissionTypeMinigameNumber, DailyLimit: limit(3), RewardAmount: 20, RewardCurrency: entities.CurrencyPoints},
		{ID: "color", Title: "Color game", MissionType: entities.MissionTypeMinigameColor, DailyLimit: limit(3), RewardAmount: 20, RewardCurrency: entities.CurrencyPoints},
		{ID: "flag", Title: "Flag quiz", MissionType: entities.MissionTypeMinigameFlag, DailyLimit: limit(3), RewardAmount: 20, RewardCurrency: entities.CurrencyPoints},
		{ID: "reaction", Title: "Reaction test", MissionType: entities.MissionTypeMinigameReaction, DailyLimit: limit(3), RewardAmount: 20, RewardCurrency: entities.CurrencyPoints},
		{ID: "decibel", Title: "Decibel challenge", MissionType: entities.MissionTypeMinigameDecibel, DailyLimit: limit(3), RewardAmount: 20, RewardCurrency: entities.CurrencyPoints},
		{ID: "invite-friend", Title: "Invite a friend", MissionType: entities.MissionTypeReferral, RewardAmount: 2, RewardCurrency: entities.CurrencyTickets},
	}
	for i, m := range missions {
		m.IsActive = true
		m.DisplayOrder = i + 1
	}

	prizes := []*entities.Prize{
		{ID: "coffee-coupon", Name: "Coffee coupon", TicketsPerEntry: 1, PityThreshold: 10, PityRewardAmount: 100, PityRewardCurrency: entities.CurrencyPoints},
		{ID: "movie-ticket", Name: "Movie ticket", TicketsPerEntry: 3, PityThreshold: 20, PityRewardAmount: 500, PityRewardCurrency: entities.CurrencyPoints},
		{ID: "game-console", Name: "Game console", TicketsPerEntry: 10, PityThreshold: 50, PityRewardAmount: 5, PityRewardCurrency: entities.CurrencyTickets},
	}
	for i, p := range prizes {
		p.IsActive = true
		p.DisplayOrder = i + 1
	}

	stock := func(n int) *int { return &n }
	products := []*entities.RewardProduct{
		{ID: "convenience-store-1000", Name: "Convenience store voucher", PointsRequired: 1000},
		{ID: "coffee-4500", Name: "Coffee voucher", PointsRequired: 4500, Stock: stock(100)},
		{ID: "gift-card-10000", Name: "Gift card", PointsRequired: 10000, Stock: stock(20)},
	}
	for i, p := range products {
		p.IsActive = true
		p.DisplayOrder = i + 1
	}

	return application.Catalog{Missions: missions, Prizes: prizes, Products: products}
}
