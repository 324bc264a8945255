package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/salescope-dev/salescope/internal/aggregate"
	"github.com/salescope-dev/salescope/internal/config"
	"github.com/salescope-dev/salescope/internal/dataset"
	"github.com/salescope-dev/salescope/internal/output"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show the full dataset insight catalogue",
	Long: `Display every deterministic statistic computed over the sales dataset:
order counts by year, top customers, product line and country sales, order
status distribution, monthly order counts, and distinct customers per country.

Examples:
  salescope stats
  salescope stats --format table
  salescope stats --year 2003 --top 10`,
	Args: cobra.NoArgs,
	RunE: runStats,
}

func init() {
	statsCmd.Flags().Int("top", aggregate.DefaultTopCustomers, "number of top customers to show")
	statsCmd.Flags().Int("year", 0, "year for monthly order counts (default: most recent year)")

	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, args []string) error {
	top, _ := cmd.Flags().GetInt("top")
	year, _ := cmd.Flags().GetInt("year")

	format := output.ParseFormat(viper.GetString("format"))
	logger := newLogger(viper.GetBool("verbose"))

	cfg := &config.Config{}
	if err := viper.Unmarshal(cfg); err != nil {
		return fmt.Errorf("failed to unmarshal config: %w", err)
	}

	store, err := dataset.Load(cfg.Dataset.Path)
	if err != nil {
		return fmt.Errorf("failed to load dataset: %w", err)
	}
	logger.Info("dataset loaded", "path", cfg.Dataset.Path, "rows", store.Len(), "skipped", store.Skipped())

	monthYear := year
	if monthYear == 0 {
		monthYear = store.MaxYear()
	}

	type section struct {
		Name    string
		Title   string
		Compute func() (aggregate.Result, error)
	}
	sections := []section{
		{"total_orders_by_year", "Total Orders by Year", func() (aggregate.Result, error) {
			return aggregate.TotalOrdersByYear(store)
		}},
		{"customer_with_most_orders", "Customer with Most Orders", func() (aggregate.Result, error) {
			return aggregate.CustomerWithMostOrders(store)
		}},
		{"top_customers_by_sales", fmt.Sprintf("Top %d Customers by Sales", top), func() (aggregate.Result, error) {
			return aggregate.TopCustomersBySales(store, top)
		}},
		{"product_line_sales", "Product Line Sales", func() (aggregate.Result, error) {
			return aggregate.ProductLineSales(store)
		}},
		{"sales_by_country", "Sales by Country", func() (aggregate.Result, error) {
			return aggregate.SalesByCountry(store)
		}},
		{"order_status_distribution", "Order Status Distribution", func() (aggregate.Result, error) {
			return aggregate.OrderStatusDistribution(store)
		}},
		{fmt.Sprintf("orders_by_month_%d", monthYear), fmt.Sprintf("Orders by Month (%d)", monthYear), func() (aggregate.Result, error) {
			return aggregate.OrdersByMonth(store, year)
		}},
		{"customers_by_country", "Customers by Country", func() (aggregate.Result, error) {
			return aggregate.CustomersByCountry(store)
		}},
	}

	if format == output.FormatJSON {
		result := make(map[string][]dataset.Group, len(sections))
		for _, s := range sections {
			res, err := s.Compute()
			if err != nil {
				return fmt.Errorf("%s: %w", s.Name, err)
			}
			result[s.Name] = res.Entries
		}
		writer := output.New(cmd.OutOrStdout(), output.FormatJSON)
		return writer.WriteJSON(result)
	}

	writer := output.New(cmd.OutOrStdout(), format)
	for _, s := range sections {
		res, err := s.Compute()
		if err != nil {
			return fmt.Errorf("%s: %w", s.Name, err)
		}
		if err := writer.WriteSection(s.Title, res.Entries); err != nil {
			return err
		}
	}

	return nil
}
