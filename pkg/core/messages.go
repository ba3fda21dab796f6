package core

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Msg is a structured message ready for simulation or broadcast.
// The set of implementations is closed: only the types declared in this file satisfy it.
type Msg interface {
	// TypeURL returns the protobuf Any type URL of the message.
	TypeURL() string
	isMsg()
}

type MsgSend struct {
	FromAddress string `json:"from_address"`
	ToAddress   string `json:"to_address"`
	Amount      Coins  `json:"amount"`
}

// BankIO is a single input or output of MsgMultiSend.
type BankIO struct {
	Address string `json:"address"`
	Coins   Coins  `json:"coins"`
}

type MsgMultiSend struct {
	Inputs  []BankIO `json:"inputs"`
	Outputs []BankIO `json:"outputs"`
}

type MsgDelegate struct {
	DelegatorAddress string `json:"delegator_address"`
	ValidatorAddress string `json:"validator_address"`
	Amount           Coin   `json:"amount"`
}

type MsgUndelegate struct {
	DelegatorAddress string `json:"delegator_address"`
	ValidatorAddress string `json:"validator_address"`
	Amount           Coin   `json:"amount"`
}

type MsgBeginRedelegate struct {
	DelegatorAddress    string `json:"delegator_address"`
	ValidatorSrcAddress string `json:"validator_src_address"`
	ValidatorDstAddress string `json:"validator_dst_address"`
	Amount              Coin   `json:"amount"`
}

type Description struct {
	Moniker         string `json:"moniker"`
	Identity        string `json:"identity"`
	Website         string `json:"website"`
	SecurityContact string `json:"security_contact"`
	Details         string `json:"details"`
}

type CommissionRates struct {
	Rate          decimal.Decimal `json:"rate"`
	MaxRate       decimal.Decimal `json:"max_rate"`
	MaxChangeRate decimal.Decimal `json:"max_change_rate"`
}

type MsgCreateValidator struct {
	Description       Description     `json:"description"`
	Commission        CommissionRates `json:"commission"`
	MinSelfDelegation decimal.Decimal `json:"min_self_delegation"`
	DelegatorAddress  string          `json:"delegator_address"`
	ValidatorAddress  string          `json:"validator_address"`
	// Pubkey is the base64 encoded ed25519 consensus key.
	Pubkey string `json:"pubkey"`
	Value  Coin   `json:"value"`
}

type MsgEditValidator struct {
	Description       *Description     `json:"description,omitempty"`
	ValidatorAddress  string           `json:"validator_address"`
	CommissionRate    *decimal.Decimal `json:"commission_rate,omitempty"`
	MinSelfDelegation *decimal.Decimal `json:"min_self_delegation,omitempty"`
}

type MsgSetAutoRestake struct {
	DelegatorAddress string `json:"delegator_address"`
	ValidatorAddress string `json:"validator_address"`
	Enabled          bool   `json:"enabled"`
}

type MsgFundCommunityPool struct {
	Amount    Coins  `json:"amount"`
	Depositor string `json:"depositor"`
}

type MsgSetWithdrawAddress struct {
	DelegatorAddress string `json:"delegator_address"`
	WithdrawAddress  string `json:"withdraw_address"`
}

type MsgWithdrawDelegatorReward struct {
	DelegatorAddress string `json:"delegator_address"`
	ValidatorAddress string `json:"validator_address"`
}

type MsgWithdrawValidatorCommission struct {
	ValidatorAddress string `json:"validator_address"`
}

type MsgCreateVestingAccount struct {
	FromAddress string `json:"from_address"`
	ToAddress   string `json:"to_address"`
	Amount      Coins  `json:"amount"`
	// EndTime is a unix timestamp in seconds.
	EndTime int64 `json:"end_time,string"`
	Delayed bool  `json:"delayed"`
}

type MsgDeposit struct {
	ProposalID uint64 `json:"proposal_id,string"`
	Depositor  string `json:"depositor"`
	Amount     Coins  `json:"amount"`
}

type MsgVote struct {
	ProposalID uint64     `json:"proposal_id,string"`
	Voter      string     `json:"voter"`
	Option     VoteOption `json:"option"`
}

type WeightedVoteOption struct {
	Option VoteOption      `json:"option"`
	Weight decimal.Decimal `json:"weight"`
}

type MsgVoteWeighted struct {
	ProposalID uint64               `json:"proposal_id,string"`
	Voter      string               `json:"voter"`
	Options    []WeightedVoteOption `json:"options"`
}

type MsgExecuteContract struct {
	Sender   string          `json:"sender"`
	Contract string          `json:"contract"`
	Msg      json.RawMessage `json:"msg"`
	CodeHash string          `json:"code_hash,omitempty"`
	// SentFunds is named after the Secret Network field.
	SentFunds Coins `json:"sent_funds"`
}

type MsgInstantiateContract struct {
	Sender    string          `json:"sender"`
	CodeID    uint64          `json:"code_id,string"`
	Label     string          `json:"label"`
	InitMsg   json.RawMessage `json:"init_msg"`
	InitFunds Coins           `json:"init_funds"`
	CodeHash  string          `json:"code_hash,omitempty"`
}

type MsgUnjail struct {
	ValidatorAddr string `json:"validator_addr"`
}

func (MsgSend) TypeURL() string      { return "/cosmos.bank.v1beta1.MsgSend" }
func (MsgMultiSend) TypeURL() string { return "/cosmos.bank.v1beta1.MsgMultiSend" }
func (MsgDelegate) TypeURL() string  { return "/cosmos.staking.v1beta1.MsgDelegate" }
func (MsgUndelegate) TypeURL() string {
	return "/cosmos.staking.v1beta1.MsgUndelegate"
}
func (MsgBeginRedelegate) TypeURL() string {
	return "/cosmos.staking.v1beta1.MsgBeginRedelegate"
}
func (MsgCreateValidator) TypeURL() string {
	return "/cosmos.staking.v1beta1.MsgCreateValidator"
}
func (MsgEditValidator) TypeURL() string {
	return "/cosmos.staking.v1beta1.MsgEditValidator"
}
func (MsgSetAutoRestake) TypeURL() string {
	return "/secret.distribution.v1beta1.MsgSetAutoRestake"
}
func (MsgFundCommunityPool) TypeURL() string {
	return "/cosmos.distribution.v1beta1.MsgFundCommunityPool"
}
func (MsgSetWithdrawAddress) TypeURL() string {
	return "/cosmos.distribution.v1beta1.MsgSetWithdrawAddress"
}
func (MsgWithdrawDelegatorReward) TypeURL() string {
	return "/cosmos.distribution.v1beta1.MsgWithdrawDelegatorReward"
}
func (MsgWithdrawValidatorCommission) TypeURL() string {
	return "/cosmos.distribution.v1beta1.MsgWithdrawValidatorCommission"
}
func (MsgCreateVestingAccount) TypeURL() string {
	return "/cosmos.vesting.v1beta1.MsgCreateVestingAccount"
}
func (MsgDeposit) TypeURL() string      { return "/cosmos.gov.v1beta1.MsgDeposit" }
func (MsgVote) TypeURL() string         { return "/cosmos.gov.v1beta1.MsgVote" }
func (MsgVoteWeighted) TypeURL() string { return "/cosmos.gov.v1beta1.MsgVoteWeighted" }
func (MsgExecuteContract) TypeURL() string {
	return "/secret.compute.v1beta1.MsgExecuteContract"
}
func (MsgInstantiateContract) TypeURL() string {
	return "/secret.compute.v1beta1.MsgInstantiateContract"
}
func (MsgUnjail) TypeURL() string { return "/cosmos.slashing.v1beta1.MsgUnjail" }

func (MsgSend) isMsg()                        {}
func (MsgMultiSend) isMsg()                   {}
func (MsgDelegate) isMsg()                    {}
func (MsgUndelegate) isMsg()                  {}
func (MsgBeginRedelegate) isMsg()             {}
func (MsgCreateValidator) isMsg()             {}
func (MsgEditValidator) isMsg()               {}
func (MsgSetAutoRestake) isMsg()              {}
func (MsgFundCommunityPool) isMsg()           {}
func (MsgSetWithdrawAddress) isMsg()          {}
func (MsgWithdrawDelegatorReward) isMsg()     {}
func (MsgWithdrawValidatorCommission) isMsg() {}
func (MsgCreateVestingAccount) isMsg()        {}
func (MsgDeposit) isMsg()                     {}
func (MsgVote) isMsg()                        {}
func (MsgVoteWeighted) isMsg()                {}
func (MsgExecuteContract) isMsg()             {}
func (MsgInstantiateContract) isMsg()         {}
func (MsgUnjail) isMsg()                      {}

type VoteOption int32

const (
	VoteOptionUnspecified VoteOption = iota
	VoteOptionYes
	VoteOptionAbstain
	VoteOptionNo
	VoteOptionNoWithVeto
)

var voteOptionNames = map[VoteOption]string{
	VoteOptionUnspecified: "VOTE_OPTION_UNSPECIFIED",
	VoteOptionYes:         "VOTE_OPTION_YES",
	VoteOptionAbstain:     "VOTE_OPTION_ABSTAIN",
	VoteOptionNo:          "VOTE_OPTION_NO",
	VoteOptionNoWithVeto:  "VOTE_OPTION_NO_WITH_VETO",
}

// VoteOptionChoices lists the accepted spellings of vote options.
const VoteOptionChoices = "YES/NO/ABSTAIN/NO_WITH_VETO"

// ParseVoteOption accepts YES, NO, ABSTAIN and NO_WITH_VETO in any case.
func ParseVoteOption(s string) (VoteOption, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "YES":
		return VoteOptionYes, nil
	case "NO":
		return VoteOptionNo, nil
	case "ABSTAIN":
		return VoteOptionAbstain, nil
	case "NO_WITH_VETO":
		return VoteOptionNoWithVeto, nil
	}
	return VoteOptionUnspecified, fmt.Errorf("unknown vote option %s", s)
}

func (o VoteOption) String() string {
	if name, ok := voteOptionNames[o]; ok {
		return name
	}
	return fmt.Sprintf("VOTE_OPTION(%d)", int32(o))
}

func (o VoteOption) MarshalJSON() ([]byte, error) {
	return json.Marshal(o.String())
}
