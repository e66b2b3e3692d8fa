// Copyright 2018 The klaytn Authors
// This file is part of the klaytn library.
//
// The klaytn library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The klaytn library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the klaytn library. If not, see <http://www.gnu.org/licenses/>.

package miner

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lp662lp662/stacks-blockchain/chainstate/stacks/merkle"
	"github.com/lp662lp662/stacks-blockchain/chainstate/stacks/rewards"
	"github.com/lp662lp662/stacks-blockchain/chainstate/stacks/types"
	"github.com/lp662lp662/stacks-blockchain/chainstate/stacks/vmiface"
	"github.com/lp662lp662/stacks-blockchain/chainstate/stacks/vmtest"
	"github.com/lp662lp662/stacks-blockchain/params"
	"github.com/lp662lp662/stacks-blockchain/stackscrypto"
	"github.com/lp662lp662/stacks-blockchain/storage/trie"
)

const testCoinbase = 1000

// harness bundles one miner identity plus the fake collaborators a Builder
// is constructed against, the way tests/klay_test_blockchain_test.go wires
// up an in-memory chain in the teacher node.
type harness struct {
	t            *testing.T
	cfg          params.Config
	vm           *vmtest.VM
	headers      *vmtest.HeadersStore
	mbs          *vmtest.MicroblockStore
	files        *trie.FileStore
	genesisBurn  types.Hash256
	minerPrivKey *stackscrypto.PrivateKey
	minerAddr    [20]byte
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	files, err := trie.NewFileStore(t.TempDir())
	require.NoError(t, err)

	genesisBurn := types.Hash256{0xE5}
	vm := vmtest.NewVM(files, genesisBurn, testCoinbase)
	headers := vmtest.NewHeadersStore()
	mbs := vmtest.NewMicroblockStore()

	key, err := stackscrypto.GeneratePrivateKey()
	require.NoError(t, err)

	return &harness{
		t:            t,
		cfg:          params.Config{MaxEpochSize: 2 * 1024 * 1024, RewardMaturity: 2, RewardWindow: 1},
		vm:           vm,
		headers:      headers,
		mbs:          mbs,
		files:        files,
		genesisBurn:  genesisBurn,
		minerPrivKey: key,
		minerAddr:    stackscrypto.Hash160(key.CompressedPubKey()),
	}
}

func (h *harness) deps() Deps {
	return Deps{
		Config:          h.cfg,
		VM:              h.vm,
		MicroblockStore: h.mbs,
		Rewards:         rewards.NewResolver(h.headers, h.cfg, testCoinbase),
		Artifacts:       h.files,
	}
}

func coinbaseTx(sender [20]byte) *vmtest.Tx {
	return &vmtest.Tx{Kind: vmtest.KindCoinbase, Sender: sender, Mode: types.AnchorModeOnChainOnly}
}

func deployTx(name string, sender [20]byte) *vmtest.Tx {
	return &vmtest.Tx{Kind: vmtest.KindContractDeploy, ContractName: name, Sender: sender, Mode: types.AnchorModeOnChainOnly}
}

func transferTx(sender, recipient [20]byte, amount uint64, mode types.AnchorMode) *vmtest.Tx {
	return &vmtest.Tx{Kind: vmtest.KindTokenTransfer, Sender: sender, Recipient: recipient, Amount: amount, Mode: mode}
}

func callTx(name, varName string, num, den int64, mode types.AnchorMode, sender [20]byte) *vmtest.Tx {
	return &vmtest.Tx{
		Kind: vmtest.KindContractCall, ContractName: name, VarName: varName,
		Numerator: num, Denominator: den, Mode: mode, Sender: sender,
	}
}

// Scenario 1: empty anchored block, single tenure atop genesis.
func TestScenario1_EmptyAnchoredBlockSingleTenure(t *testing.T) {
	h := newHarness(t)
	b := First(h.deps(), 1, h.genesisBurn, types.VRFProof("proof-1"), h.minerPrivKey)

	ctx := context.Background()
	ec, err := b.EpochBegin(ctx)
	require.NoError(t, err)

	block, err := b.MineAnchoredBlock(ctx, ec)
	require.NoError(t, err)

	require.Equal(t, merkle.EmptyRoot, block.Header.TxMerkleRoot)
	require.Equal(t, types.Hash256(params.EmptyMicroblockParent), block.Header.ParentMicroblock)
	require.Empty(t, block.Transactions)

	require.NoError(t, b.EpochFinish(ctx, ec))
}

// Scenario 2: coinbase + deploy + call, all in the same anchored block.
func TestScenario2_CoinbaseDeployCallSameAnchoredBlock(t *testing.T) {
	h := newHarness(t)
	b := First(h.deps(), 1, h.genesisBurn, types.VRFProof("proof-2"), h.minerPrivKey)

	ctx := context.Background()
	ec, err := b.EpochBegin(ctx)
	require.NoError(t, err)

	require.NoError(t, b.TryMineTx(ctx, ec, coinbaseTx(h.minerAddr)))
	require.NoError(t, b.TryMineTx(ctx, ec, deployTx("arith", h.minerAddr)))
	require.NoError(t, b.TryMineTx(ctx, ec, callTx("arith", "bar", 6, 2, types.AnchorModeOnChainOnly, h.minerAddr)))

	require.Equal(t, 3, b.Stats().AnchoredTxCount)

	block, err := b.MineAnchoredBlock(ctx, ec)
	require.NoError(t, err)
	require.Len(t, block.Transactions, 3)
	require.NotEqual(t, types.Hash256{}, block.Header.StateIndexRoot)

	require.NoError(t, b.EpochFinish(ctx, ec))

	indexBlockID := types.IndexBlockID(params.SentinelBurnHeader, params.SentinelBlockHeader)
	bar, ok := h.vm.ContractVar(indexBlockID, "arith", "bar")
	require.True(t, ok)
	require.EqualValues(t, 3, bar)
}

// Scenario 3: coinbase + deploy anchored, call delivered in a microblock;
// final state must match scenario 2.
func TestScenario3_CallInMicroblockMatchesScenario2(t *testing.T) {
	h := newHarness(t)
	b := First(h.deps(), 1, h.genesisBurn, types.VRFProof("proof-3"), h.minerPrivKey)

	ctx := context.Background()
	ec, err := b.EpochBegin(ctx)
	require.NoError(t, err)

	require.NoError(t, b.TryMineTx(ctx, ec, coinbaseTx(h.minerAddr)))
	require.NoError(t, b.TryMineTx(ctx, ec, deployTx("arith", h.minerAddr)))

	block, err := b.MineAnchoredBlock(ctx, ec)
	require.NoError(t, err)
	require.Len(t, block.Transactions, 2)

	require.NoError(t, b.TryMineTx(ctx, ec, callTx("arith", "bar", 6, 2, types.AnchorModeOffChainOnly, h.minerAddr)))
	mb, err := b.MineNextMicroblock()
	require.NoError(t, err)

	require.Equal(t, uint16(0), mb.Header.Sequence)
	require.Equal(t, block.BlockHash(), mb.Header.PrevBlockID)
	require.Len(t, mb.Transactions, 1)

	require.NoError(t, b.EpochFinish(ctx, ec))

	indexBlockID := types.IndexBlockID(params.SentinelBurnHeader, params.SentinelBlockHeader)
	bar, ok := h.vm.ContractVar(indexBlockID, "arith", "bar")
	require.True(t, ok)
	require.EqualValues(t, 3, bar)
}

// Scenario 4: oversize rejection leaves bytes_so_far and prior txs intact.
func TestScenario4_OversizeRejection(t *testing.T) {
	h := newHarness(t)
	h.cfg.MaxEpochSize = 300
	b := First(h.deps(), 1, h.genesisBurn, types.VRFProof("proof-4"), h.minerPrivKey)

	ctx := context.Background()
	ec, err := b.EpochBegin(ctx)
	require.NoError(t, err)

	require.NoError(t, b.TryMineTx(ctx, ec, coinbaseTx(h.minerAddr)))
	before := b.Stats()

	big := deployTx("a-fairly-long-contract-name-to-pad-out-the-serialized-length", h.minerAddr)
	err = b.TryMineTx(ctx, ec, big)
	require.Error(t, err)

	minerErr, ok := err.(*Error)
	require.True(t, ok)
	require.Equal(t, KindBlockTooBig, minerErr.Kind)
	require.False(t, minerErr.Fatal)

	after := b.Stats()
	require.Equal(t, before.BytesSoFar, after.BytesSoFar)
	require.Equal(t, before.AnchoredTxCount, after.AnchoredTxCount)
}

// Scenario 5: after mine_anchored_block, an OnChainOnly tx is rejected.
func TestScenario5_AnchorModeMisrouteAfterAnchoredBlock(t *testing.T) {
	h := newHarness(t)
	b := First(h.deps(), 1, h.genesisBurn, types.VRFProof("proof-5"), h.minerPrivKey)

	ctx := context.Background()
	ec, err := b.EpochBegin(ctx)
	require.NoError(t, err)
	_, err = b.MineAnchoredBlock(ctx, ec)
	require.NoError(t, err)

	err = b.TryMineTx(ctx, ec, coinbaseTx(h.minerAddr))
	require.Error(t, err)

	minerErr, ok := err.(*Error)
	require.True(t, ok)
	require.Equal(t, KindInvalidAnchorMode, minerErr.Kind)
}

// Scenario 6: over REWARD_MATURITY + REWARD_WINDOW + 1 tenures by the same
// miner, only the last tenure sees a matured reward.
func TestScenario6_RewardMaturityAcrossTenures(t *testing.T) {
	h := newHarness(t)
	threshold := h.cfg.RewardMaturity + h.cfg.RewardWindow // 3, with the harness's small test config
	// Tenure k mines the block at height k, which pays the winner at height
	// k - threshold. Genesis (height 0) has no recorded winner, so the first
	// non-empty payout is in tenure threshold+1, paying the height-1 winner.
	tenureCount := int(threshold) + 1

	ctx := context.Background()
	genesisTip := types.ChainTip{
		AnchoredHeader: types.AnchoredHeader{ParentBlockID: params.EmptyMicroblockParent, ParentMicroblock: params.EmptyMicroblockParent},
		BlockHeight:    0,
		BurnHeaderHash: h.genesisBurn,
	}
	tip := genesisTip

	var payoutsSeen []vmiface.MaturedRewards
	for i := 0; i < tenureCount; i++ {
		height := uint64(i + 1)
		burnHeaderHash := types.Hash256{byte(height)}

		var b *Builder
		if i == 0 {
			b = First(h.deps(), 1, h.genesisBurn, types.VRFProof("proof-6"), h.minerPrivKey)
		} else {
			b = FromParent(h.deps(), 1, tip, types.TotalWork{Height: height}, types.VRFProof("proof-6"), h.minerPrivKey)
		}

		ec, err := b.EpochBegin(ctx)
		require.NoError(t, err)
		payoutsSeen = append(payoutsSeen, *b.minerPayouts)

		require.NoError(t, b.TryMineTx(ctx, ec, coinbaseTx(h.minerAddr)))
		block, err := b.MineAnchoredBlock(ctx, ec)
		require.NoError(t, err)
		require.NoError(t, b.EpochFinish(ctx, ec))

		h.vm.PromoteSentinelToRealBlock(burnHeaderHash, block.BlockHash())
		h.headers.RecordMiner(height, vmiface.MinerID(h.minerAddr))

		tip = types.ChainTip{AnchoredHeader: block.Header, BlockHeight: height, BurnHeaderHash: burnHeaderHash}
	}

	for i, payout := range payoutsSeen {
		if i < tenureCount-1 {
			require.Truef(t, payout.Empty(), "tenure %d should see no matured reward yet", i+1)
		} else {
			require.Lenf(t, payout.Entries, 1, "final tenure %d should see exactly one matured reward", i+1)
			require.Equal(t, vmiface.MinerID(h.minerAddr), payout.Entries[0].Recipient)
			require.Equal(t, uint64(testCoinbase), payout.Entries[0].Amount)
		}
	}
}

// P1: bytes_so_far after a successful try_mine_tx equals before + serialized length.
func TestP1_BytesSoFarAccounting(t *testing.T) {
	h := newHarness(t)
	b := First(h.deps(), 1, h.genesisBurn, types.VRFProof("p1"), h.minerPrivKey)

	ctx := context.Background()
	ec, err := b.EpochBegin(ctx)
	require.NoError(t, err)

	before := b.Stats().BytesSoFar
	tx := coinbaseTx(h.minerAddr)
	require.NoError(t, b.TryMineTx(ctx, ec, tx))

	require.Equal(t, before+uint64(len(tx.Serialize())), b.Stats().BytesSoFar)
}

// P3/P4: the header's roots after mine_anchored_block match what was
// actually computed.
func TestP3P4_FinalizedRootsMatchComputation(t *testing.T) {
	h := newHarness(t)
	b := First(h.deps(), 1, h.genesisBurn, types.VRFProof("p3p4"), h.minerPrivKey)

	ctx := context.Background()
	ec, err := b.EpochBegin(ctx)
	require.NoError(t, err)
	require.NoError(t, b.TryMineTx(ctx, ec, coinbaseTx(h.minerAddr)))

	wantRoot := ec.GetRootHash()
	block, err := b.MineAnchoredBlock(ctx, ec)
	require.NoError(t, err)

	require.Equal(t, merkleRoot(block.Transactions), block.Header.TxMerkleRoot)
	require.Equal(t, wantRoot, block.Header.StateIndexRoot)
}

// P5: mine_next_microblock strictly increments sequence and chains
// prev_block_id.
func TestP5_MicroblockSequencingAndChaining(t *testing.T) {
	h := newHarness(t)
	b := First(h.deps(), 1, h.genesisBurn, types.VRFProof("p5"), h.minerPrivKey)

	ctx := context.Background()
	ec, err := b.EpochBegin(ctx)
	require.NoError(t, err)
	block, err := b.MineAnchoredBlock(ctx, ec)
	require.NoError(t, err)

	mb1, err := b.MineNextMicroblock()
	require.NoError(t, err)
	require.Equal(t, uint16(0), mb1.Header.Sequence)
	require.Equal(t, block.BlockHash(), mb1.Header.PrevBlockID)

	require.NoError(t, b.TryMineTx(ctx, ec, transferTx(h.minerAddr, h.minerAddr, 0, types.AnchorModeOffChainOnly)))
	mb2, err := b.MineNextMicroblock()
	require.NoError(t, err)
	require.Equal(t, uint16(1), mb2.Header.Sequence)
	require.Equal(t, mb1.Header.BlockID(), mb2.Header.PrevBlockID)
}

// P6: a signed microblock verifies against the header's declared
// microblock_pubkey_hash.
func TestP6_MicroblockSignatureVerifies(t *testing.T) {
	h := newHarness(t)
	b := First(h.deps(), 1, h.genesisBurn, types.VRFProof("p6"), h.minerPrivKey)

	ctx := context.Background()
	ec, err := b.EpochBegin(ctx)
	require.NoError(t, err)
	_, err = b.MineAnchoredBlock(ctx, ec)
	require.NoError(t, err)

	mb, err := b.MineNextMicroblock()
	require.NoError(t, err)

	require.True(t, verifyMicroblock(mb.Header, b.header.MicroblockPubKeyHash))
}

// P8: after epoch_finish, the .mined artifact exists and the sentinel path
// does not.
func TestP8_EpochFinishPublishesArtifact(t *testing.T) {
	h := newHarness(t)
	b := First(h.deps(), 1, h.genesisBurn, types.VRFProof("p8"), h.minerPrivKey)

	ctx := context.Background()
	ec, err := b.EpochBegin(ctx)
	require.NoError(t, err)
	_, err = b.MineAnchoredBlock(ctx, ec)
	require.NoError(t, err)
	require.NoError(t, b.EpochFinish(ctx, ec))

	indexBlockID := types.IndexBlockID(params.SentinelBurnHeader, params.SentinelBlockHeader)
	require.True(t, h.files.MinedPathExists(indexBlockID))

	_, statErr := os.Stat(h.files.BlockPath(params.SentinelBurnHeader, params.SentinelBlockHeader))
	require.True(t, os.IsNotExist(statErr))
}

// Requiring epoch_begin to run exactly once, and calls before it or after
// epoch_finish to panic, matches the state machine table in spec.md §4.D.
func TestStateMachineRejectsOutOfOrderCalls(t *testing.T) {
	h := newHarness(t)
	b := First(h.deps(), 1, h.genesisBurn, types.VRFProof("sm"), h.minerPrivKey)

	require.Panics(t, func() {
		_, _ = b.MineNextMicroblock()
	}, "mine_next_microblock before epoch_begin must panic")
}
