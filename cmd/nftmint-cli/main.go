// nftmint-cli is a command-line client for nftmintd nodes and Solana clusters.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/blocto/solana-go-sdk/common"
	"github.com/blocto/solana-go-sdk/types"
	"golang.org/x/term"

	"github.com/Klingon-tech/klingnet-nft/config"
	"github.com/Klingon-tech/klingnet-nft/internal/cluster"
	"github.com/Klingon-tech/klingnet-nft/internal/minter"
	"github.com/Klingon-tech/klingnet-nft/internal/nft"
	"github.com/Klingon-tech/klingnet-nft/internal/rpc"
	"github.com/Klingon-tech/klingnet-nft/internal/rpcclient"
	"github.com/Klingon-tech/klingnet-nft/internal/runtime"
	"github.com/Klingon-tech/klingnet-nft/internal/wallet"
)

// globals holds the flags that precede the subcommand.
type globals struct {
	rpcURL  string
	dataDir string
	cluster string
}

// keystoreDir returns the keystore path matching nftmintd's layout.
func (g *globals) keystoreDir() string {
	return (&config.Config{DataDir: g.dataDir}).KeystoreDir()
}

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	g := &globals{
		rpcURL:  "http://127.0.0.1:8899",
		dataDir: config.DefaultDataDir(),
		cluster: "devnet",
	}

	// Scan for --rpc, --datadir and --cluster before the subcommand.
	args := os.Args[1:]
	for len(args) > 0 {
		switch {
		case args[0] == "--rpc" && len(args) > 1:
			g.rpcURL = args[1]
			args = args[2:]
		case strings.HasPrefix(args[0], "--rpc="):
			g.rpcURL = args[0][len("--rpc="):]
			args = args[1:]
		case args[0] == "--datadir" && len(args) > 1:
			g.dataDir = args[1]
			args = args[2:]
		case strings.HasPrefix(args[0], "--datadir="):
			g.dataDir = args[0][len("--datadir="):]
			args = args[1:]
		case args[0] == "--cluster" && len(args) > 1:
			g.cluster = args[1]
			args = args[2:]
		case strings.HasPrefix(args[0], "--cluster="):
			g.cluster = args[0][len("--cluster="):]
			args = args[1:]
		default:
			goto dispatch
		}
	}

dispatch:
	if len(args) == 0 {
		usage()
		os.Exit(1)
	}

	client := rpcclient.New(g.rpcURL)
	cmd := args[0]
	cmdArgs := args[1:]

	switch cmd {
	case "status":
		cmdStatus(client)
	case "account":
		cmdAccount(client, cmdArgs)
	case "airdrop":
		cmdAirdrop(client, cmdArgs)
	case "tx":
		cmdTx(client, cmdArgs)
	case "initialize":
		cmdInitialize(client, cmdArgs)
	case "mint":
		cmdMint(client, cmdArgs)
	case "show":
		cmdShow(client, cmdArgs)
	case "authority":
		cmdAuthority(client, cmdArgs)
	case "estimate":
		cmdEstimate(client, cmdArgs)
	case "wallet":
		cmdWallet(cmdArgs, g)
	case "cluster":
		cmdCluster(cmdArgs, g)
	case "help", "--help", "-h":
		usage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", cmd)
		usage()
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, `Usage: nftmint-cli [global flags] <command> [flags]

Global flags:
  --rpc <url>         nftmintd RPC endpoint (default: http://127.0.0.1:8899)
  --datadir <path>    Data directory (default: ~/.nftmint)
  --cluster <name>    Cluster for "cluster" commands: devnet (default),
                      testnet, mainnet, localnet or a URL

Commands:
  status                          Show ledger status
  account <address>               Show a ledger account
  airdrop <address> <sol>         Fund an address from the node faucet
  tx <signature>                  Show a transaction receipt
  initialize <program>            Call a program's initialize entry point

  mint extension --name <n> --symbol <s> --uri <u>
                                  Mint a Token-2022 NFT with embedded metadata
  mint legacy --name <n> --symbol <s> --uri <u>
                                  Mint an NFT with Metaplex metadata
  show mint <address>             Show a mint
  show metadata <mint>            Show the metadata of a mint
  show token <address>            Show a token holding account
  authority [--program <p>]       Show the mint authority address of a program
  estimate --name <n> --symbol <s> --uri <u>
                                  Size and price an extension mint

  wallet create --name <n>        Create a mnemonic wallet
  wallet import --name <n> --mnemonic "..."
                                  Import a wallet from a mnemonic
  wallet import --name <n> --keypair <file>
                                  Import a Solana CLI keypair
  wallet list                     List wallets
  wallet show --wallet <w> [--index <i>]
                                  Show a wallet address
  wallet export --wallet <w> --out <file> [--index <i>]
                                  Write a Solana CLI keypair file

  cluster balance <address>       Show a cluster balance
  cluster airdrop <address> <sol> Request a cluster airdrop
  cluster mint-legacy --wallet <w> | --keypair <file> --name <n> --symbol <s> --uri <u> [--program <id>]
                                  Mint a legacy NFT on the cluster
`)
}

// ── status ──────────────────────────────────────────────────────────────

func cmdStatus(client *rpcclient.Client) {
	info, err := client.GetInfo()
	if err != nil {
		fatal("ledger_getInfo: %v", err)
	}

	fmt.Printf("Network:    %s\n", info.Network)
	fmt.Printf("Slot:       %d\n", info.Slot)
	fmt.Printf("Blockhash:  %s\n", info.Blockhash)
	fmt.Printf("Fee:        %d lamports/signature\n", info.LamportsPerSignature)
	fmt.Printf("State:      %s\n", info.StateDigest)
	if info.Payer != "" {
		fmt.Printf("Payer:      %s\n", info.Payer)
	} else {
		fmt.Println("Payer:      none (minting disabled)")
	}
	fmt.Printf("Faucet:     %t\n", info.Faucet)
	fmt.Println("Programs:")
	for name, id := range info.Programs {
		fmt.Printf("  %-24s %s\n", name, id)
	}
}

// ── ledger ──────────────────────────────────────────────────────────────

func cmdAccount(client *rpcclient.Client, args []string) {
	if len(args) < 1 {
		fatal("Usage: nftmint-cli account <address>")
	}
	acc, err := client.GetAccount(args[0])
	if err != nil {
		fatal("ledger_getAccount: %v", err)
	}
	fmt.Printf("Address:    %s\n", acc.Address)
	fmt.Printf("Balance:    %s SOL\n", formatSOL(acc.Lamports))
	fmt.Printf("Owner:      %s\n", acc.Owner)
	fmt.Printf("Space:      %d\n", acc.Space)
	fmt.Printf("Executable: %t\n", acc.Executable)
}

func cmdAirdrop(client *rpcclient.Client, args []string) {
	if len(args) < 2 {
		fatal("Usage: nftmint-cli airdrop <address> <sol>")
	}
	lamports, err := parseSOL(args[1])
	if err != nil {
		fatal("invalid amount: %v", err)
	}
	res, err := client.Airdrop(args[0], lamports)
	if err != nil {
		fatal("ledger_airdrop: %v", err)
	}
	fmt.Printf("Airdropped %s SOL to %s (balance %s SOL)\n",
		formatSOL(res.Lamports), res.Address, formatSOL(res.Balance))
}

func cmdTx(client *rpcclient.Client, args []string) {
	if len(args) < 1 {
		fatal("Usage: nftmint-cli tx <signature>")
	}
	receipt, err := client.GetTransaction(args[0])
	if err != nil {
		fatal("tx_get: %v", err)
	}
	printReceipt(receipt)
}

func cmdInitialize(client *rpcclient.Client, args []string) {
	if len(args) < 1 {
		fatal("Usage: nftmint-cli initialize <program name or address>")
	}
	res, err := client.Initialize(args[0])
	if err != nil {
		fatalMint("nft_initialize", err)
	}
	fmt.Printf("Program:    %s\n", res.Program)
	fmt.Printf("Signature:  %s\n", res.Signature)
	printLogs(res.Logs)
}

// ── mint ────────────────────────────────────────────────────────────────

func parseMintFlags(name string, args []string) rpc.MintParam {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	var p rpc.MintParam
	fs.StringVar(&p.Name, "name", "", "NFT name")
	fs.StringVar(&p.Symbol, "symbol", "", "NFT symbol")
	fs.StringVar(&p.URI, "uri", "", "Metadata URI")
	fs.Parse(args)
	if p.Name == "" {
		fatal("Usage: nftmint-cli %s --name <name> --symbol <symbol> --uri <uri>", name)
	}
	return p
}

func cmdMint(client *rpcclient.Client, args []string) {
	if len(args) < 1 {
		fatal("Usage: nftmint-cli mint <extension|legacy> [flags]")
	}

	var (
		res *rpc.MintedResult
		err error
	)
	switch args[0] {
	case minter.PipelineExtension:
		res, err = client.MintExtension(parseMintFlags("mint extension", args[1:]))
	case minter.PipelineLegacy:
		res, err = client.MintLegacy(parseMintFlags("mint legacy", args[1:]))
	default:
		fatal("Unknown mint pipeline: %s\nUsage: nftmint-cli mint <extension|legacy> [flags]", args[0])
	}
	if err != nil {
		fatalMint("mint", err)
	}

	fmt.Printf("Minted %s NFT\n", res.Pipeline)
	fmt.Printf("  Mint:           %s\n", res.Mint)
	fmt.Printf("  Token account:  %s\n", res.TokenAccount)
	if res.Authority != "" {
		fmt.Printf("  Authority:      %s\n", res.Authority)
	}
	if res.Metadata != "" {
		fmt.Printf("  Metadata:       %s\n", res.Metadata)
	}
	if res.MasterEdition != "" {
		fmt.Printf("  Master edition: %s\n", res.MasterEdition)
	}
	fmt.Printf("  Signature:      %s\n", res.Signature)
	fmt.Printf("  Fee:            %d lamports\n", res.Fee)
	for _, ev := range res.Events {
		switch ev.Type {
		case "NftMinted":
			fmt.Printf("  Event:          NftMinted to %s\n", ev.Recipient)
		case "NftMetadataUpdated":
			fmt.Printf("  Event:          NftMetadataUpdated %s=%s\n", ev.Field, ev.Value)
		}
	}
}

// ── show ────────────────────────────────────────────────────────────────

func cmdShow(client *rpcclient.Client, args []string) {
	if len(args) < 2 {
		fatal("Usage: nftmint-cli show <mint|metadata|token> <address>")
	}

	switch args[0] {
	case "mint":
		m, err := client.GetMint(args[1])
		if err != nil {
			fatal("nft_getMint: %v", err)
		}
		fmt.Printf("Mint:             %s\n", m.Address)
		fmt.Printf("Token program:    %s\n", m.TokenProgram)
		fmt.Printf("Supply:           %d\n", m.Supply)
		fmt.Printf("Decimals:         %d\n", m.Decimals)
		fmt.Printf("Mint authority:   %s\n", m.MintAuthority)
		if m.FreezeAuthority != "" {
			fmt.Printf("Freeze authority: %s\n", m.FreezeAuthority)
		}
		if m.MetadataPointer != "" {
			fmt.Printf("Metadata pointer: %s\n", m.MetadataPointer)
		}
		fmt.Printf("Space:            %d (%s SOL)\n", m.Space, formatSOL(m.Lamports))
	case "metadata":
		md, err := client.GetMetadata(args[1])
		if err != nil {
			fatal("nft_getMetadata: %v", err)
		}
		printJSON(md)
	case "token":
		ta, err := client.GetTokenAccount(args[1])
		if err != nil {
			fatal("nft_getTokenAccount: %v", err)
		}
		fmt.Printf("Token account: %s\n", ta.Address)
		fmt.Printf("Mint:          %s\n", ta.Mint)
		fmt.Printf("Owner:         %s\n", ta.Owner)
		fmt.Printf("Amount:        %d\n", ta.Amount)
		fmt.Printf("Frozen:        %t\n", ta.Frozen)
	default:
		fatal("Unknown show command: %s\nUsage: nftmint-cli show <mint|metadata|token> <address>", args[0])
	}
}

func cmdAuthority(client *rpcclient.Client, args []string) {
	fs := flag.NewFlagSet("authority", flag.ExitOnError)
	program := fs.String("program", nft.Token2022NFTName, "Program name or address")
	fs.Parse(args)

	res, err := client.DeriveAuthority(*program)
	if err != nil {
		fatal("nft_deriveAuthority: %v", err)
	}
	fmt.Printf("Program:   %s\n", res.Program)
	fmt.Printf("Authority: %s\n", res.Address)
	fmt.Printf("Bump:      %d\n", res.Bump)
}

func cmdEstimate(client *rpcclient.Client, args []string) {
	est, err := client.Estimate(parseMintFlags("estimate", args))
	if err != nil {
		fatal("nft_estimate: %v", err)
	}
	fmt.Printf("Mint space:     %d bytes\n", est.MintSpace)
	fmt.Printf("Metadata space: %d bytes\n", est.MetadataSpace)
	fmt.Printf("Total space:    %d bytes\n", est.TotalSpace)
	fmt.Printf("Rent:           %s SOL\n", formatSOL(est.Lamports))
	fmt.Printf("Authority:      %s (bump %d)\n", est.Authority, est.Bump)
}

// ── wallet ──────────────────────────────────────────────────────────────

func cmdWallet(args []string, g *globals) {
	if len(args) < 1 {
		fatal("Usage: nftmint-cli wallet <create|import|list|show|export> [flags]")
	}

	switch args[0] {
	case "create":
		cmdWalletCreate(args[1:], g.keystoreDir())
	case "import":
		cmdWalletImport(args[1:], g.keystoreDir())
	case "list":
		cmdWalletList(g.keystoreDir())
	case "show":
		cmdWalletShow(args[1:], g.keystoreDir())
	case "export":
		cmdWalletExport(args[1:], g.keystoreDir())
	default:
		fatal("Unknown wallet command: %s\nUsage: nftmint-cli wallet <create|import|list|show|export> [flags]", args[0])
	}
}

func cmdWalletCreate(args []string, ksDir string) {
	fs := flag.NewFlagSet("wallet create", flag.ExitOnError)
	name := fs.String("name", "", "Wallet name")
	fs.Parse(args)

	if *name == "" {
		fatal("Usage: nftmint-cli wallet create --name <name>")
	}

	mnemonic, err := wallet.GenerateMnemonic()
	if err != nil {
		fatal("generate mnemonic: %v", err)
	}

	fmt.Println("Mnemonic (write this down!):")
	fmt.Printf("  %s\n\n", mnemonic)

	storeSeedWallet(*name, mnemonic, ksDir)
	fmt.Printf("\nWallet created: %s\n", *name)
}

func cmdWalletImport(args []string, ksDir string) {
	fs := flag.NewFlagSet("wallet import", flag.ExitOnError)
	name := fs.String("name", "", "Wallet name")
	mnemonic := fs.String("mnemonic", "", "BIP-39 mnemonic")
	keypairPath := fs.String("keypair", "", "Solana CLI keypair file")
	fs.Parse(args)

	if *name == "" || (*mnemonic == "") == (*keypairPath == "") {
		fatal("Usage: nftmint-cli wallet import --name <name> (--mnemonic \"word1 word2 ...\" | --keypair <file>)")
	}

	if *mnemonic != "" {
		if !wallet.ValidateMnemonic(*mnemonic) {
			fatal("invalid mnemonic")
		}
		storeSeedWallet(*name, *mnemonic, ksDir)
		fmt.Printf("Wallet imported: %s\n", *name)
		return
	}

	acc, err := wallet.ReadKeypairFile(*keypairPath)
	if err != nil {
		fatal("read keypair: %v", err)
	}
	password := readNewPassword()

	ks, err := wallet.NewKeystore(ksDir)
	if err != nil {
		fatal("open keystore: %v", err)
	}
	if err := ks.Create(*name, wallet.KindKeypair, acc.PrivateKey, password, wallet.DefaultParams()); err != nil {
		fatal("create wallet: %v", err)
	}
	if err := ks.AddAccount(*name, wallet.AccountEntry{
		Index:   0,
		Name:    "Default",
		Address: acc.PublicKey.ToBase58(),
	}); err != nil {
		fatal("add account: %v", err)
	}

	fmt.Printf("Wallet imported: %s\n", *name)
	fmt.Printf("Address: %s\n", acc.PublicKey.ToBase58())
}

// storeSeedWallet encrypts the seed of mnemonic under a new password and
// records account 0.
func storeSeedWallet(name, mnemonic, ksDir string) {
	password := readNewPassword()

	seed, err := wallet.SeedFromMnemonic(mnemonic, "")
	if err != nil {
		fatal("derive seed: %v", err)
	}
	acc, err := wallet.DeriveAccount(seed, 0)
	if err != nil {
		fatal("derive account: %v", err)
	}

	ks, err := wallet.NewKeystore(ksDir)
	if err != nil {
		fatal("open keystore: %v", err)
	}
	if err := ks.Create(name, wallet.KindSeed, seed, password, wallet.DefaultParams()); err != nil {
		fatal("create wallet: %v", err)
	}

	// Zero seed.
	for i := range seed {
		seed[i] = 0
	}

	if err := ks.AddAccount(name, wallet.AccountEntry{
		Index:   0,
		Name:    "Default",
		Address: acc.PublicKey.ToBase58(),
	}); err != nil {
		fatal("add account: %v", err)
	}
	fmt.Printf("Address: %s\n", acc.PublicKey.ToBase58())
}

func cmdWalletList(ksDir string) {
	ks, err := wallet.NewKeystore(ksDir)
	if err != nil {
		fatal("open keystore: %v", err)
	}

	names, err := ks.List()
	if err != nil {
		fatal("list wallets: %v", err)
	}

	if len(names) == 0 {
		fmt.Println("No wallets found.")
		return
	}

	for _, name := range names {
		accounts, err := ks.ListAccounts(name)
		if err != nil || len(accounts) == 0 {
			fmt.Println(name)
			continue
		}
		fmt.Printf("%-20s %s\n", name, accounts[0].Address)
	}
}

func cmdWalletShow(args []string, ksDir string) {
	fs := flag.NewFlagSet("wallet show", flag.ExitOnError)
	walletName := fs.String("wallet", "", "Wallet name")
	index := fs.Uint("index", 0, "Account index")
	fs.Parse(args)

	if *walletName == "" {
		fatal("Usage: nftmint-cli wallet show --wallet <name> [--index <i>]")
	}
	acc := unlockWallet(ksDir, *walletName, uint32(*index))
	fmt.Printf("Wallet:  %s\n", *walletName)
	fmt.Printf("Index:   %d\n", *index)
	fmt.Printf("Address: %s\n", acc.PublicKey.ToBase58())
}

func cmdWalletExport(args []string, ksDir string) {
	fs := flag.NewFlagSet("wallet export", flag.ExitOnError)
	walletName := fs.String("wallet", "", "Wallet name")
	out := fs.String("out", "", "Keypair file to write")
	index := fs.Uint("index", 0, "Account index")
	fs.Parse(args)

	if *walletName == "" || *out == "" {
		fatal("Usage: nftmint-cli wallet export --wallet <name> --out <file> [--index <i>]")
	}
	acc := unlockWallet(ksDir, *walletName, uint32(*index))
	if err := wallet.WriteKeypairFile(*out, acc); err != nil {
		fatal("write keypair: %v", err)
	}
	fmt.Printf("Wrote %s (%s)\n", *out, acc.PublicKey.ToBase58())
}

func unlockWallet(ksDir, name string, index uint32) types.Account {
	ks, err := wallet.NewKeystore(ksDir)
	if err != nil {
		fatal("open keystore: %v", err)
	}
	password, err := readPassword("Enter password: ")
	if err != nil {
		fatal("read password: %v", err)
	}
	acc, err := ks.Signer(name, password, index)
	if err != nil {
		fatal("unlock wallet: %v", err)
	}
	return acc
}

// ── cluster ─────────────────────────────────────────────────────────────

func cmdCluster(args []string, g *globals) {
	if len(args) < 1 {
		fatal("Usage: nftmint-cli cluster <balance|airdrop|mint-legacy> [flags]")
	}

	c := cluster.New(g.cluster)
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	switch args[0] {
	case "balance":
		if len(args) < 2 {
			fatal("Usage: nftmint-cli cluster balance <address>")
		}
		key := parseKey(args[1])
		lamports, err := c.Balance(ctx, key)
		if err != nil {
			fatal("balance: %v", err)
		}
		fmt.Printf("%s SOL\n", formatSOL(lamports))
	case "airdrop":
		if len(args) < 3 {
			fatal("Usage: nftmint-cli cluster airdrop <address> <sol>")
		}
		lamports, err := parseSOL(args[2])
		if err != nil {
			fatal("invalid amount: %v", err)
		}
		sig, err := c.Airdrop(ctx, parseKey(args[1]), lamports)
		if err != nil {
			fatal("airdrop: %v", err)
		}
		fmt.Printf("Signature: %s\n", sig)
	case "mint-legacy":
		cmdClusterMintLegacy(ctx, c, args[1:], g)
	default:
		fatal("Unknown cluster command: %s\nUsage: nftmint-cli cluster <balance|airdrop|mint-legacy> [flags]", args[0])
	}
}

func cmdClusterMintLegacy(ctx context.Context, c *cluster.Client, args []string, g *globals) {
	fs := flag.NewFlagSet("cluster mint-legacy", flag.ExitOnError)
	walletName := fs.String("wallet", "", "Keystore wallet paying for the mint")
	keypairPath := fs.String("keypair", "", "Solana CLI keypair paying for the mint")
	program := fs.String("program", nft.MetaplexNFTProgramID.ToBase58(), "Deployed metaplex_nft program address")
	var p rpc.MintParam
	fs.StringVar(&p.Name, "name", "", "NFT name")
	fs.StringVar(&p.Symbol, "symbol", "", "NFT symbol")
	fs.StringVar(&p.URI, "uri", "", "Metadata URI")
	fs.Parse(args)

	if p.Name == "" || (*walletName == "") == (*keypairPath == "") {
		fatal("Usage: nftmint-cli cluster mint-legacy (--wallet <w> | --keypair <file>) --name <n> --symbol <s> --uri <u>")
	}

	var payer types.Account
	if *keypairPath != "" {
		acc, err := wallet.ReadKeypairFile(*keypairPath)
		if err != nil {
			fatal("read keypair: %v", err)
		}
		payer = acc
	} else {
		payer = unlockWallet(g.keystoreDir(), *walletName, 0)
	}

	m := minter.New(c, payer, minter.WithPrograms(nft.Token2022NFTProgramID, parseKey(*program)))
	minted, err := m.MintLegacy(ctx, p.Args())
	if err != nil {
		fatal("mint: %v", err)
	}
	fmt.Printf("Submitted to %s\n", c.Endpoint())
	fmt.Printf("  Mint:           %s\n", minted.Mint.ToBase58())
	fmt.Printf("  Token account:  %s\n", minted.TokenAccount.ToBase58())
	fmt.Printf("  Metadata:       %s\n", minted.Metadata.ToBase58())
	fmt.Printf("  Master edition: %s\n", minted.MasterEdition.ToBase58())
	fmt.Printf("  Signature:      %s\n", minted.Result.Signature)
}

// ── Helpers ─────────────────────────────────────────────────────────────

func printReceipt(r *runtime.Receipt) {
	fmt.Printf("Signature: %s\n", r.Signature)
	fmt.Printf("Slot:      %d\n", r.Slot)
	fmt.Printf("Fee:       %d lamports\n", r.Fee)
	if r.Err != "" {
		fmt.Printf("Status:    failed: %s\n", r.Err)
	} else {
		fmt.Println("Status:    committed")
	}
	printLogs(r.Logs)
}

func printLogs(logs []string) {
	if len(logs) == 0 {
		return
	}
	fmt.Println("Logs:")
	for _, l := range logs {
		fmt.Printf("  %s\n", l)
	}
}

func printJSON(v interface{}) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fatal("marshal: %v", err)
	}
	fmt.Println(string(data))
}

func parseKey(s string) common.PublicKey {
	key, err := runtime.ParsePublicKey(s)
	if err != nil {
		fatal("%v", err)
	}
	return key
}

// parseSOL parses a decimal SOL amount into lamports.
func parseSOL(s string) (uint64, error) {
	whole, frac, _ := strings.Cut(s, ".")
	if len(frac) > 9 {
		return 0, fmt.Errorf("too many decimal places in %q", s)
	}
	w, err := strconv.ParseUint(whole, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse %q: %w", s, err)
	}
	var f uint64
	if frac != "" {
		frac += strings.Repeat("0", 9-len(frac))
		if f, err = strconv.ParseUint(frac, 10, 64); err != nil {
			return 0, fmt.Errorf("parse %q: %w", s, err)
		}
	}
	if w > (^uint64(0)-f)/config.LamportsPerSOL {
		return 0, fmt.Errorf("amount %q overflows", s)
	}
	return w*config.LamportsPerSOL + f, nil
}

// formatSOL renders lamports as a decimal SOL amount.
func formatSOL(lamports uint64) string {
	s := fmt.Sprintf("%d.%09d", lamports/config.LamportsPerSOL, lamports%config.LamportsPerSOL)
	s = strings.TrimRight(s, "0")
	return strings.TrimSuffix(s, ".")
}

func readPassword(prompt string) ([]byte, error) {
	fmt.Fprint(os.Stderr, prompt)
	password, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Fprintln(os.Stderr) // newline after hidden input
	if err != nil {
		return nil, err
	}
	return password, nil
}

// readNewPassword prompts twice and fails on mismatch.
func readNewPassword() []byte {
	password, err := readPassword("Enter password: ")
	if err != nil {
		fatal("read password: %v", err)
	}
	confirm, err := readPassword("Confirm password: ")
	if err != nil {
		fatal("read password: %v", err)
	}
	if string(password) != string(confirm) {
		fatal("passwords do not match")
	}
	return password
}

// ── Error helper ────────────────────────────────────────────────────────

func fatal(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(1)
}

// fatalMint reports a mint failure with its category and program logs.
func fatalMint(method string, err error) {
	if f, ok := rpcclient.MintFailure(err); ok {
		fmt.Fprintf(os.Stderr, "Error: %s: %v\n", method, err)
		fmt.Fprintf(os.Stderr, "Category: %s\n", f.Category)
		if f.Signature != "" {
			fmt.Fprintf(os.Stderr, "Signature: %s\n", f.Signature)
		}
		for _, l := range f.Logs {
			fmt.Fprintf(os.Stderr, "  %s\n", l)
		}
		os.Exit(1)
	}
	fatal("%s: %v", method, err)
}
