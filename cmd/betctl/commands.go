package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/radieske/bet-market-engine/internal/advisory"
	"github.com/radieske/bet-market-engine/internal/betting"
	"github.com/radieske/bet-market-engine/internal/ledger"
	"github.com/radieske/bet-market-engine/internal/model"
	"github.com/radieske/bet-market-engine/internal/pricing"
	"github.com/radieske/bet-market-engine/internal/repo"
	"github.com/radieske/bet-market-engine/internal/settlement"
	"github.com/radieske/bet-market-engine/internal/shared/config"
	"github.com/radieske/bet-market-engine/internal/shared/logger"
)

const usage = `usage: betctl [-driver postgres|sqlite] [-dsn DSN] [-as ADMIN_ID] <command> [args]

commands:
  events                              eventos abertos (UPCOMING + LIVE)
  event <id>                          outcomes de um evento
  create-event -title T [-desc D] [-start RFC3339] <titulo:odd>...
  start <id>                          UPCOMING -> LIVE
  settle <event> <outcome>            liquida o evento
  recalc [<event>]                    recalcula um evento ou todos os abertos
  register <user> [username]          cria usuário com saldo inicial
  user <id>                           saldo e estatísticas
  bet <user> <event> <outcome> <amount>
  credit <user> <amount>              ajuste administrativo
  debit <user> <amount>               ajuste administrativo
  stats                               estatísticas da casa
  simulate <event>                    payouts por outcome vencedor
  kelly <prob> <odds> <balance>       recomendação de Kelly
  arb <event> | arb <odd> <odd>...    detecção de arbitragem`

var errUsage = errors.New(usage)

type cli struct {
	out     io.Writer
	as      int64
	bets    *betting.Service
	prices  *pricing.Engine
	settler *settlement.Engine
}

func run(ctx context.Context, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("betctl", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	driver := fs.String("driver", "", "db driver (default: DB_DRIVER)")
	dsn := fs.String("dsn", "", "database url (default: DATABASE_URL)")
	as := fs.Int64("as", 0, "id do administrador registrado nos eventos criados")
	verbose := fs.Bool("v", false, "log detalhado")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	rest := fs.Args()
	if len(rest) == 0 {
		return errUsage
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if *driver != "" {
		cfg.DBDriver = *driver
	}
	if *dsn != "" {
		cfg.DatabaseURL = *dsn
	}

	log := zap.NewNop()
	if *verbose {
		if log, err = logger.New("betctl", "local", cfg.LogLevel); err != nil {
			return err
		}
		defer log.Sync()
	}

	st, err := repo.Open(ctx, cfg.DBDriver, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer st.Close()

	l := ledger.New()
	c := &cli{
		out:     out,
		as:      *as,
		bets:    betting.NewService(st, l, cfg.Market, log, nil),
		prices:  pricing.NewEngine(st, cfg.Market, log),
		settler: settlement.NewEngine(st, l, log, nil),
	}
	return c.dispatch(ctx, rest[0], rest[1:])
}

func (c *cli) dispatch(ctx context.Context, cmd string, args []string) error {
	switch cmd {
	case "events":
		return c.events(ctx)
	case "event":
		return c.withID(args, func(id int64) error { return c.event(ctx, id) })
	case "create-event":
		return c.createEvent(ctx, args)
	case "start":
		return c.withID(args, func(id int64) error { return c.start(ctx, id) })
	case "settle":
		return c.settle(ctx, args)
	case "recalc":
		return c.recalc(ctx, args)
	case "register":
		return c.register(ctx, args)
	case "user":
		return c.withID(args, func(id int64) error { return c.user(ctx, id) })
	case "bet":
		return c.bet(ctx, args)
	case "credit":
		return c.adjust(ctx, args, false)
	case "debit":
		return c.adjust(ctx, args, true)
	case "stats":
		return c.stats(ctx)
	case "simulate":
		return c.withID(args, func(id int64) error { return c.simulate(ctx, id) })
	case "kelly":
		return c.kelly(args)
	case "arb":
		return c.arb(ctx, args)
	default:
		return fmt.Errorf("unknown command %q\n%w", cmd, errUsage)
	}
}

func (c *cli) table(header ...any) *tablewriter.Table {
	t := tablewriter.NewWriter(c.out)
	t.Header(header...)
	return t
}

func (c *cli) withID(args []string, fn func(int64) error) error {
	if len(args) != 1 {
		return errUsage
	}
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	return fn(id)
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return id, nil
}

func odds(v float64) string { return strconv.FormatFloat(v, 'f', 2, 64) }

func (c *cli) events(ctx context.Context) error {
	evs, err := c.bets.ListActiveEvents(ctx)
	if err != nil {
		return err
	}
	t := c.table("ID", "Event", "Status", "Start", "Outcomes")
	for _, e := range evs {
		_ = t.Append(strconv.FormatInt(e.ID, 10), e.Title, string(e.Status),
			e.StartTime.Format("2006-01-02 15:04"), strconv.Itoa(len(e.Outcomes)))
	}
	return t.Render()
}

func (c *cli) event(ctx context.Context, id int64) error {
	e, err := c.bets.GetEvent(ctx, id)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "%s (%s)\n", e.Title, e.Status)
	t := c.table("ID", "Outcome", "Odds", "Wagered", "Resolution")
	for _, o := range e.Outcomes {
		_ = t.Append(strconv.FormatInt(o.ID, 10), o.Title, odds(o.Odds),
			o.TotalWagered.StringFixed(2), string(o.Resolution))
	}
	return t.Render()
}

func (c *cli) createEvent(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("create-event", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	title := fs.String("title", "", "título do evento")
	desc := fs.String("desc", "", "descrição")
	start := fs.String("start", "", "início (RFC3339)")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}

	in := betting.NewEvent{Title: *title, Description: *desc, CreatedBy: c.as}
	if *start != "" {
		ts, err := time.Parse(time.RFC3339, *start)
		if err != nil {
			return fmt.Errorf("invalid -start: %w", err)
		}
		in.StartTime = ts
	}
	for _, arg := range fs.Args() {
		i := strings.LastIndex(arg, ":")
		if i <= 0 {
			return fmt.Errorf("outcome %q: expected titulo:odd", arg)
		}
		v, err := strconv.ParseFloat(arg[i+1:], 64)
		if err != nil {
			return fmt.Errorf("outcome %q: %w", arg, err)
		}
		in.Outcomes = append(in.Outcomes, betting.NewOutcome{Title: arg[:i], Odds: v})
	}

	e, err := c.bets.CreateEvent(ctx, in)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "created event %d\n", e.ID)
	return c.event(ctx, e.ID)
}

func (c *cli) start(ctx context.Context, id int64) error {
	e, err := c.bets.StartEvent(ctx, id)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "event %d is %s\n", e.ID, e.Status)
	return nil
}

func (c *cli) settle(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return errUsage
	}
	eventID, err := parseID(args[0])
	if err != nil {
		return err
	}
	outcomeID, err := parseID(args[1])
	if err != nil {
		return err
	}
	r, err := c.settler.SettleEvent(ctx, eventID, outcomeID)
	if err != nil {
		return err
	}
	t := c.table("Winning bets", "Losing bets", "Staked", "Paid", "Lost stakes", "House profit")
	_ = t.Append(strconv.Itoa(r.WinningCount), strconv.Itoa(r.LosingCount), r.TotalStaked.StringFixed(2),
		r.TotalPaid.StringFixed(2), r.TotalLostStakes.StringFixed(2), r.HouseProfit.StringFixed(2))
	return t.Render()
}

func (c *cli) recalc(ctx context.Context, args []string) error {
	if len(args) == 0 {
		res, err := c.prices.RecalculateAllOpenEvents(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(c.out, "updated %d events, %d failed\n", res.Updated, res.Failed)
		return nil
	}
	return c.withID(args, func(id int64) error {
		quotes, err := c.prices.RecalculateOdds(ctx, id)
		if err != nil {
			return err
		}
		t := c.table("Outcome", "Probability", "Odds")
		for _, q := range quotes {
			_ = t.Append(q.Title, strconv.FormatFloat(q.Probability, 'f', 3, 64),
				advisory.FormatOddsChange(q.PreviousOdds, q.Odds))
		}
		return t.Render()
	})
}

func (c *cli) register(ctx context.Context, args []string) error {
	if len(args) < 1 || len(args) > 2 {
		return errUsage
	}
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	u := model.User{ID: id}
	if len(args) == 2 {
		u.Username = args[1]
	}
	u, created, err := c.bets.RegisterUser(ctx, u)
	if err != nil {
		return err
	}
	if created {
		fmt.Fprintf(c.out, "registered user %d with balance %s\n", u.ID, u.Balance.StringFixed(2))
	} else {
		fmt.Fprintf(c.out, "user %d already exists (balance %s)\n", u.ID, u.Balance.StringFixed(2))
	}
	return nil
}

func (c *cli) user(ctx context.Context, id int64) error {
	u, err := c.bets.GetUser(ctx, id)
	if err != nil {
		return err
	}
	st, err := c.bets.UserStats(ctx, id)
	if err != nil {
		return err
	}
	t := c.table("User", "Balance", "Bets", "Pending", "Won", "Lost", "Staked", "Won amount", "Profit")
	_ = t.Append(strconv.FormatInt(u.ID, 10), u.Balance.StringFixed(2), strconv.Itoa(st.TotalBets),
		strconv.Itoa(st.Pending), strconv.Itoa(st.Won), strconv.Itoa(st.Lost),
		st.TotalStaked.StringFixed(2), st.TotalWon.StringFixed(2), st.Profit.StringFixed(2))
	return t.Render()
}

func (c *cli) bet(ctx context.Context, args []string) error {
	if len(args) != 4 {
		return errUsage
	}
	var ids [3]int64
	for i := range ids {
		id, err := parseID(args[i])
		if err != nil {
			return err
		}
		ids[i] = id
	}
	amount, err := decimal.NewFromString(args[3])
	if err != nil {
		return fmt.Errorf("invalid amount %q", args[3])
	}
	b, err := c.bets.PlaceBet(ctx, ids[0], ids[1], ids[2], amount)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "bet %d placed at %s, potential payout %s\n", b.ID, odds(b.Odds), b.PotentialPayout.StringFixed(2))
	return nil
}

func (c *cli) adjust(ctx context.Context, args []string, debit bool) error {
	if len(args) != 2 {
		return errUsage
	}
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	amount, err := decimal.NewFromString(args[1])
	if err != nil || !amount.IsPositive() {
		return fmt.Errorf("invalid amount %q", args[1])
	}
	if debit {
		amount = amount.Neg()
	}
	u, err := c.bets.AdjustBalance(ctx, id, amount)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "user %d balance %s\n", u.ID, u.Balance.StringFixed(2))
	return nil
}

func (c *cli) stats(ctx context.Context) error {
	s, err := c.bets.HouseStats(ctx)
	if err != nil {
		return err
	}
	t := c.table("Users", "Active", "Bets", "Staked", "Paid", "House profit", "Margin %")
	_ = t.Append(strconv.FormatInt(s.TotalUsers, 10), strconv.FormatInt(s.ActiveUsers, 10),
		strconv.FormatInt(s.TotalBets, 10), s.TotalStaked.StringFixed(2), s.TotalPaid.StringFixed(2),
		s.HouseProfit.StringFixed(2), strconv.FormatFloat(s.MarginPct, 'f', 2, 64))
	return t.Render()
}

func (c *cli) simulate(ctx context.Context, id int64) error {
	sum, err := c.bets.EventSummary(ctx, id)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "%s: %d bets, pool %s\n", sum.Event.Title, sum.TotalBets, sum.TotalStaked.StringFixed(2))
	t := c.table("If wins", "Winning bets", "Payout", "House profit", "Margin %")
	for _, s := range advisory.SimulatePayouts(sum) {
		_ = t.Append(s.Title, strconv.Itoa(s.WinningBets), s.TotalPayout.StringFixed(2),
			s.HouseProfit.StringFixed(2), strconv.FormatFloat(s.HouseMargin, 'f', 1, 64))
	}
	return t.Render()
}

func (c *cli) kelly(args []string) error {
	if len(args) != 3 {
		return errUsage
	}
	var v [3]float64
	for i, a := range args {
		f, err := strconv.ParseFloat(a, 64)
		if err != nil {
			return fmt.Errorf("invalid number %q", a)
		}
		v[i] = f
	}
	k := advisory.GetKellyRecommendation(v[0], v[1], v[2])
	t := c.table("Recommendation", "Confidence", "EV", "Kelly stake", "Kelly %")
	_ = t.Append(string(k.Recommendation), strconv.Itoa(k.Confidence),
		strconv.FormatFloat(k.ExpectedValue, 'f', 3, 64), strconv.FormatFloat(k.KellyStake, 'f', 2, 64),
		strconv.FormatFloat(k.KellyPercentage, 'f', 1, 64))
	return t.Render()
}

func (c *cli) arb(ctx context.Context, args []string) error {
	var outs []advisory.OutcomeOdds
	switch len(args) {
	case 0:
		return errUsage
	case 1:
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		e, err := c.bets.GetEvent(ctx, id)
		if err != nil {
			return err
		}
		for _, o := range e.Outcomes {
			outs = append(outs, advisory.OutcomeOdds{Title: o.Title, Odds: o.Odds})
		}
	default:
		for i, a := range args {
			f, err := strconv.ParseFloat(a, 64)
			if err != nil {
				return fmt.Errorf("invalid odds %q", a)
			}
			outs = append(outs, advisory.OutcomeOdds{Title: fmt.Sprintf("#%d", i+1), Odds: f})
		}
	}

	a := advisory.DetectArbitrage(outs)
	if !a.IsArbitrage {
		fmt.Fprintf(c.out, "no arbitrage (margin %.2f%%)\n", a.Margin)
		return nil
	}
	fmt.Fprintf(c.out, "arbitrage: profit %.2f%% on %.0f\n", a.ProfitMargin, a.TotalStake)
	t := c.table("Outcome", "Odds", "Stake")
	for _, s := range a.Stakes {
		_ = t.Append(s.Outcome, odds(s.Odds), strconv.FormatFloat(s.Stake, 'f', 2, 64))
	}
	return t.Render()
}
