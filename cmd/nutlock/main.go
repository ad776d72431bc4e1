package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/nbd-wtf/go-nostr"
	"github.com/nutlock/nutlock/cashu"
	"github.com/nutlock/nutlock/identity"
	"github.com/nutlock/nutlock/nutzap"
	"github.com/nutlock/nutlock/relock"
	"github.com/nutlock/nutlock/wallet"
	"github.com/nutlock/nutlock/wallet/storage"
	"github.com/urfave/cli/v2"
)

var config Config

func setupConfig(ctx *cli.Context) error {
	var err error
	config, err = loadConfig()
	if err != nil {
		printErr(err)
	}
	return nil
}

func main() {
	app := &cli.App{
		Name:  "nutlock",
		Usage: "check and relock pubkey locked cashu tokens",
		Commands: []*cli.Command{
			redeemableCmd,
			relockCmd,
			lockpointCmd,
			decodeCmd,
			nutzapCmd,
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

// mintClient returns a client for the mint with keysets
// persisted in the nutlock path.
func mintClient(mintURL string) (*wallet.Mint, func(), error) {
	if err := os.MkdirAll(config.Path, 0700); err != nil {
		return nil, nil, err
	}
	db, err := storage.InitBolt(config.Path)
	if err != nil {
		return nil, nil, err
	}

	client, err := wallet.NewMint(wallet.Config{
		MintURL: mintURL,
		Timeout: config.MintTimeout,
		Storage: db,
		Logger:  config.logger(),
	})
	if err != nil {
		db.Close()
		return nil, nil, err
	}
	return client, func() { db.Close() }, nil
}

func decodeTokenArg(ctx *cli.Context) cashu.Token {
	args := ctx.Args()
	if args.Len() < 1 {
		printErr(errors.New("cashu token not provided"))
	}

	token, err := cashu.DecodeToken(args.First())
	if err != nil {
		printErr(err)
	}
	return token
}

const pubkeyFlag = "pubkey"

var redeemableCmd = &cli.Command{
	Name:      "redeemable",
	Usage:     "amount of a token that can be redeemed by a pubkey",
	ArgsUsage: "[TOKEN]",
	Before:    setupConfig,
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:  pubkeyFlag,
			Usage: "pubkey (npub or hex) the token should be locked to. Defaults to the configured identity",
		},
	},
	Action: redeemable,
}

func redeemable(ctx *cli.Context) error {
	token := decodeTokenArg(ctx)

	var provider relock.IdentityProvider
	var err error
	if ctx.IsSet(pubkeyFlag) {
		provider, err = identity.NewNostrPubkey(ctx.String(pubkeyFlag))
	} else {
		provider, err = config.identity()
	}
	if err != nil {
		printErr(err)
	}
	pubkey, ok := provider.CurrentPubkey()
	if !ok {
		printErr(relock.ErrNoActiveIdentity)
	}

	client, closeDB, err := mintClient(token.Mint())
	if err != nil {
		printErr(err)
	}
	defer closeDB()

	amount, err := relock.AmountRedeemable(ctx.Context, token, pubkey, client)
	if err != nil {
		printErr(fmt.Errorf("token cannot be trusted: %v", err))
	}

	fmt.Printf("%v of %v sats redeemable\n", amount, token.Amount())
	return nil
}

var relockCmd = &cli.Command{
	Name:      "relock",
	Usage:     "swap a token for one locked to the configured identity",
	ArgsUsage: "[TOKEN]",
	Before:    setupConfig,
	Action:    relockToSelf,
}

func relockToSelf(ctx *cli.Context) error {
	token := decodeTokenArg(ctx)

	provider, err := config.identity()
	if err != nil {
		printErr(err)
	}

	client, closeDB, err := mintClient(token.Mint())
	if err != nil {
		printErr(err)
	}
	defer closeDB()

	// swap with p2pk outputs and dleq on signatures
	if err := client.CheckSupport(ctx.Context, 11, 12); err != nil {
		printErr(err)
	}

	newToken, err := relock.RelockToSelf(ctx.Context, token, provider, client)
	if err != nil {
		printErr(err)
	}

	serialized, err := newToken.Serialize()
	if err != nil {
		printErr(err)
	}
	fmt.Println(serialized)
	return nil
}

var lockpointCmd = &cli.Command{
	Name:      "lockpoint",
	Usage:     "lock point that ecash for a pubkey is locked to",
	ArgsUsage: "[PUBKEY]",
	Action:    lockpoint,
}

func lockpoint(ctx *cli.Context) error {
	args := ctx.Args()
	if args.Len() < 1 {
		printErr(errors.New("pubkey not provided"))
	}

	provider, err := identity.NewNostrPubkey(args.First())
	if err != nil {
		printErr(err)
	}
	pubkey, _ := provider.CurrentPubkey()

	lockPoint, err := relock.DeriveLockPoint(pubkey)
	if err != nil {
		printErr(err)
	}
	refundKey, err := relock.NormalizePubkey(pubkey)
	if err != nil {
		printErr(err)
	}

	fmt.Printf("lock point: %v\nrefund key: %v\n", lockPoint, refundKey)
	return nil
}

var decodeCmd = &cli.Command{
	Name:      "decode",
	Usage:     "print the contents of a token",
	ArgsUsage: "[TOKEN]",
	Action:    decode,
}

func decode(ctx *cli.Context) error {
	token := decodeTokenArg(ctx)

	jsonToken, err := json.MarshalIndent(struct {
		Mint   string       `json:"mint"`
		Amount uint64       `json:"amount"`
		Proofs cashu.Proofs `json:"proofs"`
	}{
		Mint:   token.Mint(),
		Amount: token.Amount(),
		Proofs: token.Proofs(),
	}, "", "  ")
	if err != nil {
		printErr(err)
	}

	fmt.Println(string(jsonToken))
	return nil
}

var nutzapCmd = &cli.Command{
	Name:      "nutzap",
	Usage:     "amount of a nutzap event that can be redeemed by its recipient",
	ArgsUsage: "[EVENT FILE or - for stdin]",
	Before:    setupConfig,
	Action:    redeemableNutzap,
}

func redeemableNutzap(ctx *cli.Context) error {
	args := ctx.Args()
	if args.Len() < 1 {
		printErr(errors.New("event file not provided"))
	}

	var eventBytes []byte
	var err error
	if args.First() == "-" {
		eventBytes, err = io.ReadAll(os.Stdin)
	} else {
		eventBytes, err = os.ReadFile(args.First())
	}
	if err != nil {
		printErr(err)
	}

	var evt nostr.Event
	if err := json.Unmarshal(eventBytes, &evt); err != nil {
		printErr(fmt.Errorf("invalid event: %v", err))
	}

	token, err := nutzap.Token(&evt)
	if err != nil {
		printErr(err)
	}

	client, closeDB, err := mintClient(token.Mint())
	if err != nil {
		printErr(err)
	}
	defer closeDB()

	amount, err := nutzap.AmountRedeemable(ctx.Context, &evt, client)
	if err != nil {
		printErr(fmt.Errorf("nutzap cannot be trusted: %v", err))
	}

	fmt.Printf("%v of %v sats redeemable\n", amount, token.Amount())
	return nil
}

func printErr(msg error) {
	fmt.Fprintln(os.Stderr, msg.Error())
	os.Exit(1)
}
