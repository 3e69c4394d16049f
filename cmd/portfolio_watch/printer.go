package main

import (
	"fmt"
	"io"
	"sort"
	"sync"
	"text/tabwriter"

	"wallet_portfolio/internal/domain/entity"
)

// printer renders coordinator updates as plain text.
type printer struct {
	mu     sync.Mutex
	w      io.Writer
	tokens []entity.Token
}

func newPrinter(w io.Writer) *printer {
	return &printer{w: w}
}

func (p *printer) OnPortfolioState(state entity.PortfolioState) {
	p.mu.Lock()
	defer p.mu.Unlock()

	switch state.Status {
	case entity.StatusLoading:
		fmt.Fprintf(p.w, "Loading portfolio for %s...\n", state.Address)
	case entity.StatusEmpty:
		fmt.Fprintln(p.w, "No tokens or NFTs found for this wallet.")
	case entity.StatusError:
		fmt.Fprintf(p.w, "Error: %s\n", state.Message)
	case entity.StatusLoaded:
		p.tokens = state.Data.Tokens
		p.printHoldings(state.Data)
	}
}

func (p *printer) OnPriceSnapshot(snapshot entity.PriceSnapshot) {
	p.mu.Lock()
	defer p.mu.Unlock()

	tw := tabwriter.NewWriter(p.w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "TOKEN\tBALANCE\tPRICE")
	for _, token := range p.tokens {
		price, ok := snapshot[token.ID]
		if !ok {
			continue
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", token.Symbol, token.FormattedBalance(), price.FormattedUSD())
	}
	_ = tw.Flush()
	fmt.Fprintln(p.w)
}

func (p *printer) printHoldings(data *entity.PortfolioData) {
	tw := tabwriter.NewWriter(p.w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "TOKEN\tNAME\tBALANCE\tADDRESS")
	for _, token := range data.Tokens {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", token.Symbol, token.Name, token.FormattedBalance(), token.TruncatedAddress())
	}
	_ = tw.Flush()

	if len(data.NFTCollections) == 0 {
		return
	}
	collections := append([]entity.NFTCollection(nil), data.NFTCollections...)
	sort.SliceStable(collections, func(i, j int) bool { return collections[i].OwnedCount > collections[j].OwnedCount })

	fmt.Fprintln(p.w)
	tw = tabwriter.NewWriter(p.w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "COLLECTION\tTYPE\tOWNED\tFLOOR")
	for _, c := range collections {
		floor, ok := c.FormattedFloorPrice()
		if !ok {
			floor = "-"
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n", c.Name, c.TokenType, c.OwnedCount, floor)
	}
	_ = tw.Flush()
	fmt.Fprintln(p.w)
}
