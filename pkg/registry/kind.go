package registry

// Kind identifies a message type. The set of kinds is closed; every kind must have a descriptor.
type Kind int

const (
	KindUnknown Kind = iota
	Send
	MultiSend
	Delegate
	Undelegate
	BeginRedelegate
	CreateValidator
	EditValidator
	SetAutoRestake
	FundCommunityPool
	SetWithdrawAddress
	WithdrawDelegatorReward
	WithdrawValidatorCommission
	CreateVestingAccount
	Deposit
	Vote
	VoteWeighted
	ExecuteContract
	InstantiateContract
	Unjail

	kindCount
)

var kindNames = [kindCount]string{
	KindUnknown:                 "",
	Send:                        "MsgSend",
	MultiSend:                   "MsgMultiSend",
	Delegate:                    "MsgDelegate",
	Undelegate:                  "MsgUndelegate",
	BeginRedelegate:             "MsgBeginRedelegate",
	CreateValidator:             "MsgCreateValidator",
	EditValidator:               "MsgEditValidator",
	SetAutoRestake:              "MsgSetAutoRestake",
	FundCommunityPool:           "MsgFundCommunityPool",
	SetWithdrawAddress:          "MsgSetWithdrawAddress",
	WithdrawDelegatorReward:     "MsgWithdrawDelegatorReward",
	WithdrawValidatorCommission: "MsgWithdrawValidatorCommission",
	CreateVestingAccount:        "MsgCreateVestingAccount",
	Deposit:                     "MsgDeposit",
	Vote:                        "MsgVote",
	VoteWeighted:                "MsgVoteWeighted",
	ExecuteContract:             "MsgExecuteContract",
	InstantiateContract:         "MsgInstantiateContract",
	Unjail:                      "MsgUnjail",
}

func (k Kind) String() string {
	if k < 0 || k >= kindCount {
		return ""
	}
	return kindNames[k]
}

// Kinds returns all registered kinds in declaration order.
func Kinds() []Kind {
	kinds := make([]Kind, 0, kindCount-1)
	for k := KindUnknown + 1; k < kindCount; k++ {
		kinds = append(kinds, k)
	}
	return kinds
}

// ParseKind resolves a message type name such as "MsgSend".
func ParseKind(name string) (Kind, bool) {
	if name == "" {
		return KindUnknown, false
	}
	for k := KindUnknown + 1; k < kindCount; k++ {
		if kindNames[k] == name {
			return k, true
		}
	}
	return KindUnknown, false
}
