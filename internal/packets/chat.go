package packets

// Chat transport message types.
const (
	ChatLoginType Type = 0x0201 + iota
	ChatLoginAckType
	DenyListType
	DenyAddType
	DenyRemoveType
	ClubMemberLoginType
	WhisperType
	WhisperAckType
)

// ChatLoginResult values are protocol-significant; 1 is unassigned on the
// wire and kept reserved here.
type ChatLoginResult uint8

const (
	ChatLoginOK             ChatLoginResult = 0
	ChatLoginInvalidSession ChatLoginResult = 2
	ChatLoginUnknownPlayer  ChatLoginResult = 3
	ChatLoginAlreadyOnline  ChatLoginResult = 4
)

type ChatLoginRequest struct {
	AccountID uint64 `json:"account_id"`
}

func (*ChatLoginRequest) PacketType() Type { return ChatLoginType }

type ChatLoginAck struct {
	Result ChatLoginResult `json:"result"`
}

func (*ChatLoginAck) PacketType() Type { return ChatLoginAckType }

type DenyInfo struct {
	AccountID uint64 `json:"account_id"`
	Nickname  string `json:"nickname"`
}

type DenyListAck struct {
	Entries []DenyInfo `json:"entries"`
}

func (*DenyListAck) PacketType() Type { return DenyListType }

type DenyAddRequest struct {
	AccountID uint64 `json:"account_id"`
	Nickname  string `json:"nickname"`
}

func (*DenyAddRequest) PacketType() Type { return DenyAddType }

type DenyRemoveRequest struct {
	AccountID uint64 `json:"account_id"`
}

func (*DenyRemoveRequest) PacketType() Type { return DenyRemoveType }

type ClubMemberLoginAck struct {
	AccountID uint64 `json:"account_id"`
}

func (*ClubMemberLoginAck) PacketType() Type { return ClubMemberLoginType }

type WhisperRequest struct {
	ToNickname string `json:"to_nickname"`
	Message    string `json:"message"`
}

func (*WhisperRequest) PacketType() Type { return WhisperType }

type WhisperAck struct {
	FromNickname string `json:"from_nickname"`
	Message      string `json:"message"`
}

func (*WhisperAck) PacketType() Type { return WhisperAckType }

func init() {
	registerMessage(ChatLoginType, func() Message { return &ChatLoginRequest{} })
	registerMessage(ChatLoginAckType, func() Message { return &ChatLoginAck{} })
	registerMessage(DenyListType, func() Message { return &DenyListAck{} })
	registerMessage(DenyAddType, func() Message { return &DenyAddRequest{} })
	registerMessage(DenyRemoveType, func() Message { return &DenyRemoveRequest{} })
	registerMessage(ClubMemberLoginType, func() Message { return &ClubMemberLoginAck{} })
	registerMessage(WhisperType, func() Message { return &WhisperRequest{} })
	registerMessage(WhisperAckType, func() Message { return &WhisperAck{} })
}
