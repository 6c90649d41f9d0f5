// Package mirror reconstructs the positions of a personally filtered copy of a reference fund
// and sizes the orders that keep it aligned with the fund.
//
// The core functionalities are:
//   - Playback: a Player replays the broker orders together with the corporate actions
//     (dividends, splits, mergers, spinoffs and symbol changes) into positions, using the
//     average cost basis method, optionally taking snapshots at the end of given days.
//   - Valuation: AddMarketValues prices positions with a QuoteSource.
//   - Rebalancing: Rebalance and CalculateOrderAmounts turn target weights, current values and
//     an amount to invest (or withdraw) into per slice order amounts, honoring a minimum order
//     size.
//   - Preview: Preview joins positions and slices and attaches the notional, or share
//     quantity for a liquidation, to send for each asset.
//   - Slices: MergeUpdatedHoldings follows the fund composition changes.
//
// All amounts are exact decimals. The package performs no I/O itself: quotes, historical
// prices and corporate actions come from the interfaces it consumes, see the quotes and
// pricedb packages.
package mirror
