package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/fatih/color"

	"github.com/WhoSowSee/CurrencyConverter/internal/cache"
	"github.com/WhoSowSee/CurrencyConverter/internal/config"
	"github.com/WhoSowSee/CurrencyConverter/internal/feed"
	"github.com/WhoSowSee/CurrencyConverter/internal/models"
	"github.com/WhoSowSee/CurrencyConverter/internal/netcheck"
	"github.com/WhoSowSee/CurrencyConverter/internal/service"
	"github.com/WhoSowSee/CurrencyConverter/pkg/logger"
)

func usage() {
	fmt.Println("Usage: cli <command> [arguments]")
	fmt.Println("Commands:")
	fmt.Println("  status                      show rate, source and connectivity")
	fmt.Println("  convert <amount> [-reverse] convert UAH to RUB (-reverse for RUB to UAH)")
	fmt.Println("  steam <amount> [-uah]       price a Steam top-up in RUB (-uah to convert first)")
	fmt.Println("  rate <value>                set the exchange rate manually")
	fmt.Println("  refresh                     reload the cache file and re-initialize")
}

func main() {
	if len(os.Args) < 2 {
		usage()
		return
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to load config:", err)
		os.Exit(1)
	}

	log := logger.NewConsoleLogger("currency-cli")
	defer log.Sync()

	prober := netcheck.NewChecker(log, cfg.Probe.Addresses...)
	store := cache.NewStore(cfg.Cache.Path, log)
	cacheManager := cache.NewManager(store, prober, log)
	rateClient := feed.NewRateClient(cfg.RateFeed.URL, cfg.RateFeed.Timeout, log)
	priceClient := feed.NewPriceClient(
		cfg.PriceFeed.URL,
		cfg.PriceFeed.PartnerID,
		cfg.PriceFeed.Timeout,
		cfg.PriceFeed.ProbeTimeout,
		prober,
		log,
	)
	converter := service.NewConverter(prober, rateClient, priceClient, cacheManager, log)

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	switch os.Args[1] {
	case "status":
		converter.Initialize(ctx)
		printStatus(converter.StatusInfo())

	case "convert":
		fs := flag.NewFlagSet("convert", flag.ExitOnError)
		reverse := fs.Bool("reverse", false, "convert RUB to UAH instead")
		amount, ok := parseAmountArgs(fs)
		if !ok {
			return
		}
		converter.Initialize(ctx)
		result, err := converter.ConvertCurrency(amount, *reverse)
		if err != nil {
			fail(err)
		}
		color.New(color.FgGreen).Printf("%v %s = %v %s",
			result.Amount, result.FromCurrency, result.Result, result.ToCurrency)
		fmt.Printf("  (rate %v)\n", result.Rate)

	case "steam":
		fs := flag.NewFlagSet("steam", flag.ExitOnError)
		fromUAH := fs.Bool("uah", false, "amount is in UAH, convert before pricing")
		amount, ok := parseAmountArgs(fs)
		if !ok {
			return
		}
		converter.Initialize(ctx)
		result, err := converter.ConvertToSteam(ctx, amount, *fromUAH)
		if err != nil {
			fail(err)
		}
		if *fromUAH {
			fmt.Printf("%v UAH = %v RUB\n", result.Amount, result.RubAmount)
		}
		color.New(color.FgGreen).Printf("Steam receives: %d RUB\n", result.SteamResult)
		fmt.Printf("Commission: %v%% (%v RUB), priced via %s\n",
			result.Commission, result.CommissionAmount, result.PriceTier)

	case "rate":
		if len(os.Args) < 3 {
			fmt.Println("Usage: cli rate <value>")
			return
		}
		rate, err := strconv.ParseFloat(os.Args[2], 64)
		if err != nil {
			fail(fmt.Errorf("invalid rate: %w", err))
		}
		if err := converter.SetManualRate(rate); err != nil {
			fail(err)
		}
		// A manual rate is session state; persist it so other commands and
		// front ends see it until the next refresh overwrites it.
		cacheManager.SetRate(rate)
		printStatus(converter.StatusInfo())

	case "refresh":
		converter.Reload(ctx)
		printStatus(converter.StatusInfo())

	default:
		usage()
	}
}

// parseAmountArgs reads <amount> plus flags from os.Args[2:]; the amount
// may come before or after the flags.
func parseAmountArgs(fs *flag.FlagSet) (float64, bool) {
	args := os.Args[2:]
	if len(args) > 0 && args[0] != "" && args[0][0] != '-' {
		fs.Parse(args[1:])
		return mustAmount(args[0]), true
	}
	fs.Parse(args)
	if fs.NArg() < 1 {
		fmt.Printf("Usage: cli %s <amount> [flags]\n", fs.Name())
		return 0, false
	}
	return mustAmount(fs.Arg(0)), true
}

func mustAmount(s string) float64 {
	amount, err := strconv.ParseFloat(s, 64)
	if err != nil {
		fail(fmt.Errorf("invalid amount %q: %w", s, err))
	}
	return amount
}

func printStatus(info models.StatusInfo) {
	online := color.New(color.FgRed).Sprint("offline")
	if info.IsOnline {
		online = color.New(color.FgGreen).Sprint("online")
	}
	fmt.Printf("Status: %s | rate source: %s\n", online, info.RateSource)
	if info.RateDisplay != "" {
		fmt.Println(info.RateDisplay)
	}
	if info.CacheAge != "" {
		fmt.Printf("Cached rate updated %s\n", info.CacheAge)
	}
}

func fail(err error) {
	color.New(color.FgRed).Fprintln(os.Stderr, err.Error())
	os.Exit(1)
}
