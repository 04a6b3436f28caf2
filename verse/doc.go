// Package verse is the client SDK for the Interverse game asset ledger.
//
// A Client pairs one duplex push channel with an HTTP gateway. The push
// channel delivers asset, balance, and transfer frames in arrival order to
// subscribers registered through the On* methods. The gateway performs
// discrete ledger operations: wallet creation, balance queries, minting,
// transfers, and asset listings, each authenticated with the configured
// api key.
//
// Connecting is optional. Gateway calls work from a disconnected client;
// Connect only adds push delivery. The session never reconnects on its
// own: when the channel drops, subscribers observe the failure and decide
// whether to call Connect again.
//
// Game engine integrations that restyle assets per game live in the
// styles subpackage.
package verse
