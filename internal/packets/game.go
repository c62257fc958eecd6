package packets

// Game transport message types.
const (
	LoginRequestType Type = 0x0101 + iota
	LoginAckType
	ServerResultType
	InventoryInfoType
	CashInfoType
	AccountInfoType
	ChannelListRequestType
	ChannelListType
	ChannelEnterType
	ChannelEnterAckType
	ChannelLeaveType
	ChannelLeaveAckType
	RoomMakeType
	RoomEnterType
	RoomEnterAckType
	RoomLeaveType
	RoomLeaveAckType
	RoomPlayerJoinedType
	RoomPlayerLeftType
	RoomHostChangeType
	RoomMasterChangeType
	TeamChangeType
	TeamChangeAckType
	ReadyRoundType
	ReadyRoundAckType
	BeginRoundType
	GameLoadingSuccessType
	GameStartType
	AvatarChangeType
	AvatarChangeAckType
	ItemChangeType
	ItemChangeAckType
	ChangeRuleNotifyType
	ChangeRuleAckType
	ScoreKillType
	ScoreSuicideType
	ScoreUpdateType
)

// LoginResult is the game login result code. The values are
// protocol-significant and must not be renumbered.
type LoginResult uint32

const (
	LoginOK                   LoginResult = 0
	LoginServerFull           LoginResult = 1
	LoginAlreadyOnline        LoginResult = 2
	LoginWrongVersion         LoginResult = 3
	LoginSessionTimeout       LoginResult = 5
	LoginSessionExpired       LoginResult = 6
	LoginKickedExisting       LoginResult = 7
	LoginInsufficientSecurity LoginResult = 9
)

// ServerResult is the generic acknowledgement code.
type ServerResult uint32

const (
	ResultOK          ServerResult = 0
	ResultServerError ServerResult = 1
	ResultFailedTask  ServerResult = 2
	ResultWelcome     ServerResult = 3
)

type LoginRequest struct {
	AccountID      uint64 `json:"account_id"`
	Username       string `json:"username"`
	Datetime       string `json:"datetime"`
	AuthToken      string `json:"auth_token"`
	SecondaryToken string `json:"secondary_token"`
	KickExisting   bool   `json:"kick_existing"`
}

func (*LoginRequest) PacketType() Type { return LoginRequestType }

type LoginAck struct {
	Result    LoginResult `json:"result"`
	AccountID uint64      `json:"account_id"`
}

func (*LoginAck) PacketType() Type { return LoginAckType }

type ServerResultAck struct {
	Result ServerResult `json:"result"`
	// Operator-facing detail, empty for client errors.
	Message string `json:"message,omitempty"`
}

func (*ServerResultAck) PacketType() Type { return ServerResultType }

type ItemInfo struct {
	ID         uint64 `json:"id"`
	ItemNumber uint32 `json:"item_number"`
	Count      uint32 `json:"count"`
	// -1 when the item never expires.
	ExpireTime int64 `json:"expire_time"`
}

type InventoryInfoAck struct {
	Items []ItemInfo `json:"items"`
}

func (*InventoryInfoAck) PacketType() Type { return InventoryInfoType }

type CashInfoAck struct {
	PEN uint `json:"pen"`
	AP  uint `json:"ap"`
}

func (*CashInfoAck) PacketType() Type { return CashInfoType }

type AccountInfoAck struct {
	Nickname    string `json:"nickname"`
	Level       int    `json:"level"`
	TotalExp    uint64 `json:"total_exp"`
	TotalWins   uint   `json:"total_wins"`
	TotalLosses uint   `json:"total_losses"`
	IsGM        bool   `json:"is_gm"`
}

func (*AccountInfoAck) PacketType() Type { return AccountInfoType }

type ChannelListRequest struct{}

func (*ChannelListRequest) PacketType() Type { return ChannelListRequestType }

type ChannelInfo struct {
	ID            uint32 `json:"id"`
	Name          string `json:"name"`
	PlayersOnline int    `json:"players_online"`
	PlayerLimit   int    `json:"player_limit"`
}

type ChannelListAck struct {
	Channels []ChannelInfo `json:"channels"`
}

func (*ChannelListAck) PacketType() Type { return ChannelListType }

type ChannelEnterRequest struct {
	ChannelID uint32 `json:"channel_id"`
}

func (*ChannelEnterRequest) PacketType() Type { return ChannelEnterType }

type ChannelEnterAck struct {
	Result ServerResult `json:"result"`
}

func (*ChannelEnterAck) PacketType() Type { return ChannelEnterAckType }

type ChannelLeaveRequest struct{}

func (*ChannelLeaveRequest) PacketType() Type { return ChannelLeaveType }

type ChannelLeaveAck struct {
	Result ServerResult `json:"result"`
}

func (*ChannelLeaveAck) PacketType() Type { return ChannelLeaveAckType }

// RoomOptions carries the creation (and rule-change) options for a room.
type RoomOptions struct {
	Name         string `json:"name"`
	Password     string `json:"password,omitempty"`
	PlayerLimit  int    `json:"player_limit"`
	MapID        uint32 `json:"map_id"`
	Mode         uint32 `json:"mode"`
	TimeLimitMin int    `json:"time_limit_min"`
	ScoreLimit   int    `json:"score_limit"`
}

type RoomMakeRequest struct {
	Options RoomOptions `json:"options"`
}

func (*RoomMakeRequest) PacketType() Type { return RoomMakeType }

type RoomEnterRequest struct {
	RoomID   uint32 `json:"room_id"`
	Password string `json:"password,omitempty"`
}

func (*RoomEnterRequest) PacketType() Type { return RoomEnterType }

type RoomEnterAck struct {
	Result ServerResult `json:"result"`
	RoomID uint32       `json:"room_id"`
}

func (*RoomEnterAck) PacketType() Type { return RoomEnterAckType }

type RoomLeaveRequest struct{}

func (*RoomLeaveRequest) PacketType() Type { return RoomLeaveType }

type RoomLeaveAck struct {
	Result ServerResult `json:"result"`
}

func (*RoomLeaveAck) PacketType() Type { return RoomLeaveAckType }

type RoomPlayerJoinedAck struct {
	AccountID uint64 `json:"account_id"`
	Nickname  string `json:"nickname"`
	Team      uint8  `json:"team"`
}

func (*RoomPlayerJoinedAck) PacketType() Type { return RoomPlayerJoinedType }

type RoomPlayerLeftAck struct {
	AccountID uint64 `json:"account_id"`
}

func (*RoomPlayerLeftAck) PacketType() Type { return RoomPlayerLeftType }

type RoomHostChangeAck struct {
	AccountID uint64 `json:"account_id"`
}

func (*RoomHostChangeAck) PacketType() Type { return RoomHostChangeType }

type RoomMasterChangeAck struct {
	AccountID uint64 `json:"account_id"`
}

func (*RoomMasterChangeAck) PacketType() Type { return RoomMasterChangeType }

type TeamChangeRequest struct {
	Team uint8 `json:"team"`
}

func (*TeamChangeRequest) PacketType() Type { return TeamChangeType }

type TeamChangeAck struct {
	Result    ServerResult `json:"result"`
	AccountID uint64       `json:"account_id"`
	Team      uint8        `json:"team"`
}

func (*TeamChangeAck) PacketType() Type { return TeamChangeAckType }

type ReadyRoundRequest struct {
	Ready bool `json:"ready"`
}

func (*ReadyRoundRequest) PacketType() Type { return ReadyRoundType }

type ReadyRoundAck struct {
	AccountID uint64 `json:"account_id"`
	Ready     bool   `json:"ready"`
}

func (*ReadyRoundAck) PacketType() Type { return ReadyRoundAckType }

type BeginRoundRequest struct{}

func (*BeginRoundRequest) PacketType() Type { return BeginRoundType }

type GameLoadingSuccessRequest struct{}

func (*GameLoadingSuccessRequest) PacketType() Type { return GameLoadingSuccessType }

type GameStartAck struct {
	Phase string `json:"phase"`
}

func (*GameStartAck) PacketType() Type { return GameStartType }

type AvatarChangeRequest struct {
	Costume uint32 `json:"costume"`
}

func (*AvatarChangeRequest) PacketType() Type { return AvatarChangeType }

type AvatarChangeAck struct {
	AccountID uint64 `json:"account_id"`
	Costume   uint32 `json:"costume"`
}

func (*AvatarChangeAck) PacketType() Type { return AvatarChangeAckType }

type ItemChangeRequest struct {
	ItemID uint64 `json:"item_id"`
}

func (*ItemChangeRequest) PacketType() Type { return ItemChangeType }

type ItemChangeAck struct {
	AccountID uint64 `json:"account_id"`
	ItemID    uint64 `json:"item_id"`
}

func (*ItemChangeAck) PacketType() Type { return ItemChangeAckType }

type ChangeRuleNotifyRequest struct {
	Options RoomOptions `json:"options"`
}

func (*ChangeRuleNotifyRequest) PacketType() Type { return ChangeRuleNotifyType }

type ChangeRuleAck struct {
	Options RoomOptions `json:"options"`
}

func (*ChangeRuleAck) PacketType() Type { return ChangeRuleAckType }

type ScoreKillRequest struct {
	TargetID uint64 `json:"target_id"`
}

func (*ScoreKillRequest) PacketType() Type { return ScoreKillType }

type ScoreSuicideRequest struct{}

func (*ScoreSuicideRequest) PacketType() Type { return ScoreSuicideType }

type ScoreUpdateAck struct {
	AccountID uint64 `json:"account_id"`
	Kills     uint32 `json:"kills"`
	Deaths    uint32 `json:"deaths"`
}

func (*ScoreUpdateAck) PacketType() Type { return ScoreUpdateType }

func init() {
	registerMessage(LoginRequestType, func() Message { return &LoginRequest{} })
	registerMessage(LoginAckType, func() Message { return &LoginAck{} })
	registerMessage(ServerResultType, func() Message { return &ServerResultAck{} })
	registerMessage(InventoryInfoType, func() Message { return &InventoryInfoAck{} })
	registerMessage(CashInfoType, func() Message { return &CashInfoAck{} })
	registerMessage(AccountInfoType, func() Message { return &AccountInfoAck{} })
	registerMessage(ChannelListRequestType, func() Message { return &ChannelListRequest{} })
	registerMessage(ChannelListType, func() Message { return &ChannelListAck{} })
	registerMessage(ChannelEnterType, func() Message { return &ChannelEnterRequest{} })
	registerMessage(ChannelEnterAckType, func() Message { return &ChannelEnterAck{} })
	registerMessage(ChannelLeaveType, func() Message { return &ChannelLeaveRequest{} })
	registerMessage(ChannelLeaveAckType, func() Message { return &ChannelLeaveAck{} })
	registerMessage(RoomMakeType, func() Message { return &RoomMakeRequest{} })
	registerMessage(RoomEnterType, func() Message { return &RoomEnterRequest{} })
	registerMessage(RoomEnterAckType, func() Message { return &RoomEnterAck{} })
	registerMessage(RoomLeaveType, func() Message { return &RoomLeaveRequest{} })
	registerMessage(RoomLeaveAckType, func() Message { return &RoomLeaveAck{} })
	registerMessage(RoomPlayerJoinedType, func() Message { return &RoomPlayerJoinedAck{} })
	registerMessage(RoomPlayerLeftType, func() Message { return &RoomPlayerLeftAck{} })
	registerMessage(RoomHostChangeType, func() Message { return &RoomHostChangeAck{} })
	registerMessage(RoomMasterChangeType, func() Message { return &RoomMasterChangeAck{} })
	registerMessage(TeamChangeType, func() Message { return &TeamChangeRequest{} })
	registerMessage(TeamChangeAckType, func() Message { return &TeamChangeAck{} })
	registerMessage(ReadyRoundType, func() Message { return &ReadyRoundRequest{} })
	registerMessage(ReadyRoundAckType, func() Message { return &ReadyRoundAck{} })
	registerMessage(BeginRoundType, func() Message { return &BeginRoundRequest{} })
	registerMessage(GameLoadingSuccessType, func() Message { return &GameLoadingSuccessRequest{} })
	registerMessage(GameStartType, func() Message { return &GameStartAck{} })
	registerMessage(AvatarChangeType, func() Message { return &AvatarChangeRequest{} })
	registerMessage(AvatarChangeAckType, func() Message { return &AvatarChangeAck{} })
	registerMessage(ItemChangeType, func() Message { return &ItemChangeRequest{} })
	registerMessage(ItemChangeAckType, func() Message { return &ItemChangeAck{} })
	registerMessage(ChangeRuleNotifyType, func() Message { return &ChangeRuleNotifyRequest{} })
	registerMessage(ChangeRuleAckType, func() Message { return &ChangeRuleAck{} })
	registerMessage(ScoreKillType, func() Message { return &ScoreKillRequest{} })
	registerMessage(ScoreSuicideType, func() Message { return &ScoreSuicideRequest{} })
	registerMessage(ScoreUpdateType, func() Message { return &ScoreUpdateAck{} })
}
