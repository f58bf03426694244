package keytool_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/PolyhedraZK/nbnet/internal/keytool"
	"github.com/PolyhedraZK/nbnet/internal/model"
	"github.com/PolyhedraZK/nbnet/internal/unittest"
	"github.com/stretchr/testify/require"
	"github.com/tyler-smith/go-bip39"
)

// fakeLighthouse mimics the lighthouse subcommands used by the key tool. Every
// invocation is appended to $FAKE_LIGHTHOUSE_LOG; setting $FAKE_LIGHTHOUSE_FAIL
// makes every command fail.
const fakeLighthouse = `#!/bin/sh
echo "$*" >> "$FAKE_LIGHTHOUSE_LOG"
if [ -n "$FAKE_LIGHTHOUSE_FAIL" ]; then
    echo "boom: $FAKE_LIGHTHOUSE_FAIL" >&2
    exit 1
fi

cmd="$1 $2"
shift 2
[ "$cmd" = "account validator" ] && { cmd="$cmd $1"; shift; }

out=""; count=0; first=0; datadir=""; token=""
while [ $# -gt 0 ]; do
    case "$1" in
        --output-path) out="$2"; shift ;;
        --count) count="$2"; shift ;;
        --first-index) first="$2"; shift ;;
        --datadir) datadir="$2"; shift ;;
        --vc-token) token="$2"; shift ;;
    esac
    shift
done

case "$cmd" in
"validator-manager create")
    {
        printf '['
        i=0
        while [ $i -lt $count ]; do
            [ $i -gt 0 ] && printf ','
            printf '{"pubkey":"%096x","withdrawal_credentials":"01%062x","amount":32000000000,"signature":"%0192x","deposit_message_root":"%064x","deposit_data_root":"%064x","fork_version":"10000038","network_name":"custom","deposit_cli_version":"2.7.0"}' $i $i $i $i $i
            i=$((i+1))
        done
        printf ']'
    } > "$out/deposits.json"
    echo '[]' > "$out/validators.json"
    ;;
"validator-manager import")
    [ -f "$token" ] || { echo "no token" >&2; exit 1; }
    ;;
"account validator recover")
    read mnemonic
    [ -n "$mnemonic" ] || { echo "no mnemonic" >&2; exit 1; }
    pk="0x$(printf '%096x' $first)"
    mkdir -p "$datadir/validators/$pk" "$datadir/secrets"
    echo '{}' > "$datadir/validators/$pk/voting-keystore.json"
    echo 'pw' > "$datadir/secrets/$pk"
    echo "Running account manager for custom network"
    echo "validator $first: $pk"
    ;;
"account validator exit")
    echo "Successfully published voluntary exit"
    ;;
*)
    echo "unknown command $cmd" >&2
    exit 2
    ;;
esac
`

// installFakeLighthouse writes the fake binary into a temp dir and returns its path
// and the path of the invocation log.
func installFakeLighthouse(t *testing.T) (string, string) {
	t.Helper()
	dir := t.TempDir()
	bin := filepath.Join(dir, "lighthouse")
	require.NoError(t, os.WriteFile(bin, []byte(fakeLighthouse), 0o755))

	logPath := filepath.Join(dir, "calls.log")
	t.Setenv("FAKE_LIGHTHOUSE_LOG", logPath)
	t.Setenv("FAKE_LIGHTHOUSE_FAIL", "")
	return bin, logPath
}

func readCalls(t *testing.T, logPath string) []string {
	t.Helper()
	raw, err := os.ReadFile(logPath)
	require.NoError(t, err)
	return strings.Split(strings.TrimSpace(string(raw)), "\n")
}

// TestNewMnemonic verifies generated mnemonics are valid 24-word phrases and unique.
func TestNewMnemonic(t *testing.T) {
	lh := keytool.NewLighthouse(unittest.Logger(t), "")

	a, err := lh.NewMnemonic()
	require.NoError(t, err)
	b, err := lh.NewMnemonic()
	require.NoError(t, err)

	require.Len(t, strings.Fields(a), keytool.MnemonicWords)
	require.True(t, bip39.IsMnemonicValid(a))
	require.NotEqual(t, a, b)
}

// TestCreateValidators verifies the create invocation and deposit data parsing.
func TestCreateValidators(t *testing.T) {
	bin, logPath := installFakeLighthouse(t)
	lh := keytool.NewLighthouse(unittest.Logger(t), bin)
	out := filepath.Join(t.TempDir(), "batch")
	addr := unittest.RandomAddress(t)

	batch, err := lh.CreateValidators(context.Background(), keytool.CreateRequest{
		Mnemonic:          "test mnemonic",
		Count:             3,
		WithdrawalAddress: addr,
		FeeRecipient:      addr,
		TestnetDir:        "/genesis",
		OutputDir:         out,
	})
	require.NoError(t, err)

	require.Len(t, batch.Entries, 3)
	require.Equal(t, filepath.Join(out, "deposits.json"), batch.DepositsPath)
	require.Equal(t, filepath.Join(out, "validators.json"), batch.ValidatorsPath)
	for i, e := range batch.Entries {
		require.Len(t, e.PubKey, 48)
		require.Len(t, e.WithdrawalCredentials, 32)
		require.Len(t, e.Signature, 96)
		require.Len(t, e.DepositDataRoot, 32)
		require.EqualValues(t, 32_000_000_000, e.Amount)
		require.EqualValues(t, i, e.PubKey[47])
	}

	calls := readCalls(t, logPath)
	require.Len(t, calls, 1)
	require.Contains(t, calls[0], "validator-manager create --testnet-dir /genesis")
	require.Contains(t, calls[0], "--first-index 0 --count 3")
	require.Contains(t, calls[0], "--eth1-withdrawal-address "+addr.Hex())
	require.NotContains(t, calls[0], "test mnemonic", "mnemonic must not appear on the command line")

	_, err = os.Stat(filepath.Join(out, "mnemonic.txt"))
	require.True(t, os.IsNotExist(err), "mnemonic file must be removed")
}

// TestCreateValidatorsRejectsInvalidRequest verifies validation runs before the tool.
func TestCreateValidatorsRejectsInvalidRequest(t *testing.T) {
	bin, logPath := installFakeLighthouse(t)
	lh := keytool.NewLighthouse(unittest.Logger(t), bin)

	_, err := lh.CreateValidators(context.Background(), keytool.CreateRequest{
		Mnemonic:   "m",
		Count:      0,
		TestnetDir: "/genesis",
		OutputDir:  t.TempDir(),
	})
	require.ErrorContains(t, err, "invalid create request")

	_, err = os.Stat(logPath)
	require.True(t, os.IsNotExist(err), "tool must not run")
}

// TestCreateValidatorsToolFailure verifies tool output is carried in the error.
func TestCreateValidatorsToolFailure(t *testing.T) {
	bin, _ := installFakeLighthouse(t)
	t.Setenv("FAKE_LIGHTHOUSE_FAIL", "no testnet dir")
	lh := keytool.NewLighthouse(unittest.Logger(t), bin)
	addr := unittest.RandomAddress(t)

	_, err := lh.CreateValidators(context.Background(), keytool.CreateRequest{
		Mnemonic:          "m",
		Count:             1,
		WithdrawalAddress: addr,
		FeeRecipient:      addr,
		TestnetDir:        "/genesis",
		OutputDir:         t.TempDir(),
	})
	require.ErrorContains(t, err, "validator-manager create failed")
	require.ErrorContains(t, err, "boom: no testnet dir")
}

// TestImportValidators verifies the import invocation and the token precondition.
func TestImportValidators(t *testing.T) {
	bin, logPath := installFakeLighthouse(t)
	lh := keytool.NewLighthouse(unittest.Logger(t), bin)

	home := t.TempDir()
	n := model.Node{ID: 1, Host: "127.0.0.1", Home: home}
	token := n.ValidatorAPITokenPath()
	req := keytool.ImportRequest{
		ValidatorsFile: "/tmp/batch/validators.json",
		TestnetDir:     "/genesis",
		DataDir:        n.ValidatorDataDir(),
		ClientURL:      "http://127.0.0.1:5062",
		TokenPath:      token,
	}

	err := lh.ImportValidators(context.Background(), req)
	require.ErrorContains(t, err, "validator client api token")

	require.Equal(t, token, unittest.APITokenFixture(t, n))
	require.NoError(t, lh.ImportValidators(context.Background(), req))

	require.NoError(t, os.WriteFile(token, []byte("garbage"), 0o600))
	err = lh.ImportValidators(context.Background(), req)
	require.ErrorContains(t, err, "malformed")

	calls := readCalls(t, logPath)
	require.Len(t, calls, 1)
	require.Equal(t, "validator-manager import --testnet-dir /genesis --datadir "+n.ValidatorDataDir()+
		" --validators-file /tmp/batch/validators.json --vc-url http://127.0.0.1:5062 --vc-token "+token, calls[0])
}

// TestRecoverKeystore verifies recovery of one index and the resulting paths.
func TestRecoverKeystore(t *testing.T) {
	bin, logPath := installFakeLighthouse(t)
	lh := keytool.NewLighthouse(unittest.Logger(t), bin)
	scratch := t.TempDir()

	ks, err := lh.RecoverKeystore(context.Background(), keytool.RecoverRequest{
		Mnemonic:   "some words",
		Index:      5,
		TestnetDir: "/genesis",
		OutputDir:  scratch,
	})
	require.NoError(t, err)

	wantPK := "0x" + strings.Repeat("0", 95) + "5"
	require.Equal(t, wantPK, ks.PubKey)
	require.Equal(t, filepath.Join(scratch, "validators", wantPK, "voting-keystore.json"), ks.KeystorePath)
	require.Equal(t, filepath.Join(scratch, "secrets", wantPK), ks.PasswordPath)

	calls := readCalls(t, logPath)
	require.Contains(t, calls[0], "account validator recover --stdin-inputs")
	require.Contains(t, calls[0], "--first-index 5 --count 1")
}

// TestParseRecoveredPubKey verifies the last printed key is taken.
func TestParseRecoveredPubKey(t *testing.T) {
	pk1 := "0x" + strings.Repeat("a", 96)
	pk2 := "0x" + strings.Repeat("b", 96)

	got, err := keytool.ParseRecoveredPubKey([]byte("first " + pk1 + "\nthen " + pk2 + "\n"))
	require.NoError(t, err)
	require.Equal(t, pk2, got)

	_, err = keytool.ParseRecoveredPubKey([]byte("0x1234 is too short"))
	require.Error(t, err)
}

// TestSubmitExit verifies the wait flag maps onto --no-wait.
func TestSubmitExit(t *testing.T) {
	bin, logPath := installFakeLighthouse(t)
	lh := keytool.NewLighthouse(unittest.Logger(t), bin)
	req := keytool.ExitRequest{
		Keystore: keytool.Keystore{
			PubKey:       "0xabc",
			KeystorePath: "/tmp/s/validators/0xabc/voting-keystore.json",
			PasswordPath: "/tmp/s/secrets/0xabc",
		},
		BeaconURL:  "http://10.0.0.1:5052",
		TestnetDir: "/genesis",
		Wait:       true,
	}

	require.NoError(t, lh.SubmitExit(context.Background(), req))
	req.Wait = false
	require.NoError(t, lh.SubmitExit(context.Background(), req))

	calls := readCalls(t, logPath)
	require.Len(t, calls, 2)
	require.Equal(t, "account validator exit --beacon-node http://10.0.0.1:5052 --testnet-dir /genesis"+
		" --keystore /tmp/s/validators/0xabc/voting-keystore.json --password-file /tmp/s/secrets/0xabc --no-confirmation", calls[0])
	require.True(t, strings.HasSuffix(calls[1], "--no-confirmation --no-wait"))
}

// TestSubmitExitRejectsMissingKeystore verifies validation of nested keystore fields.
func TestSubmitExitRejectsMissingKeystore(t *testing.T) {
	lh := keytool.NewLighthouse(unittest.Logger(t), "lighthouse-not-installed")

	err := lh.SubmitExit(context.Background(), keytool.ExitRequest{
		BeaconURL:  "http://10.0.0.1:5052",
		TestnetDir: "/genesis",
	})
	require.ErrorContains(t, err, "invalid exit request")
}

// TestReadDepositEntries verifies parsing of hex fields without prefix.
func TestReadDepositEntries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "deposits.json")
	require.NoError(t, os.WriteFile(path, []byte(`[{"pubkey":"aa","withdrawal_credentials":"0x01","amount":1000,
		"signature":"cc","deposit_message_root":"dd","deposit_data_root":"ee","fork_version":"10000038"}]`), 0o600))

	entries, err := keytool.ReadDepositEntries(path)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.EqualValues(t, []byte{0xaa}, entries[0].PubKey)
	require.EqualValues(t, []byte{0x01}, entries[0].WithdrawalCredentials)
	require.EqualValues(t, 1000, entries[0].Amount)
	require.EqualValues(t, []byte{0x10, 0x00, 0x00, 0x38}, entries[0].ForkVersion)

	require.NoError(t, os.WriteFile(path, []byte(`[{"pubkey":"zz"}]`), 0o600))
	_, err = keytool.ReadDepositEntries(path)
	require.Error(t, err)
}
