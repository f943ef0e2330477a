package wire

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
)

const owner = "0xaa00000000000000000000000000000000000000"

func dec(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	if err != nil {
		t.Fatalf("bad decimal %q: %v", s, err)
	}
	return d
}

func decP(t *testing.T, s string) *decimal.Decimal {
	d := dec(t, s)
	return &d
}

func encode(t *testing.T, cmd Command) []byte {
	t.Helper()
	payload, err := Encode(cmd)
	if err != nil {
		t.Fatalf("encode %T: %v", cmd, err)
	}
	return payload
}

// TestCommandTags pins the tag byte of every command variant.
func TestCommandTags(t *testing.T) {
	cases := []struct {
		cmd Command
		tag Tag
	}{
		{SessionContext{Op: TagSessionRegister}, 0x01},
		{SessionContext{Op: TagSessionUpdate}, 0x02},
		{SessionContext{Op: TagSessionDelete}, 0x03},
		{ValueTransfer{}, 0x04},
		{TokenTransfer{}, 0x05},
		{Order{}, 0x06},
		{Cancel{}, 0x07},
		{CancelAll{}, 0x08},
		{Modify{}, 0x09},
		{StopOrder{}, 0x0a},
	}
	for _, c := range cases {
		if c.cmd.Tag() != c.tag {
			t.Errorf("%T tag = 0x%02x, want 0x%02x", c.cmd, byte(c.cmd.Tag()), byte(c.tag))
		}
	}
}

func TestEncodeCancelExactWire(t *testing.T) {
	payload := encode(t, Cancel{L1Owner: owner, OrderID: "order-123"})

	if payload[0] != byte(TagCancel) {
		t.Fatalf("tag = 0x%02x, want 0x07", payload[0])
	}
	want := `{"l1owner":"` + owner + `","orderId":"order-123"}`
	if got := string(payload[1:]); got != want {
		t.Errorf("body = %s, want %s", got, want)
	}
}

func TestEncodeOrderKeyOrder(t *testing.T) {
	payload := encode(t, Order{
		L1Owner:    owner,
		BaseToken:  "5",
		QuoteToken: "2",
		Side:       SideBuy,
		Price:      dec(t, "2500.5"),
		Quantity:   dec(t, "10"),
		OrderType:  OrderTypeLimit,
		OrderMode:  OrderModeBase,
	})

	want := `{"l1owner":"` + owner + `","baseToken":"5","quoteToken":"2","side":0,"price":"2500.5","quantity":"10","orderType":0,"orderMode":0}`
	if got := string(payload[1:]); got != want {
		t.Errorf("body = %s\nwant   %s", got, want)
	}
}

func TestEncodeOrderDeterministic(t *testing.T) {
	order := Order{
		L1Owner:    owner,
		BaseToken:  "5",
		QuoteToken: "2",
		Side:       SideSell,
		Price:      dec(t, "0.125"),
		Quantity:   dec(t, "3"),
		OrderType:  OrderTypeMarket,
		OrderMode:  OrderModeQuote,
	}
	first := encode(t, order)
	second := encode(t, order)
	if string(first) != string(second) {
		t.Error("identical orders encoded differently")
	}
	if strings.ContainsAny(string(first[1:]), " \n\t") {
		t.Error("encoded body contains whitespace")
	}
}

func TestOrderTPSLOmittedWhenEmpty(t *testing.T) {
	base := Order{
		L1Owner:    owner,
		BaseToken:  "5",
		QuoteToken: "2",
		Price:      dec(t, "100"),
		Quantity:   dec(t, "1"),
	}

	payloadWithout := encode(t, base)
	if strings.Contains(string(payloadWithout), "tpsl") {
		t.Error("tpsl present for order without tpsl")
	}

	base.Tpsl = &TPSL{}
	payloadEmpty := encode(t, base)
	if strings.Contains(string(payloadEmpty), "tpsl") {
		t.Error("tpsl present for all-nil tpsl")
	}

	base.Tpsl = &TPSL{TpLimit: decP(t, "120.5")}
	payloadWith := encode(t, base)
	if !strings.Contains(string(payloadWith), `"tpsl":{"tpLimit":"120.5"}`) {
		t.Errorf("partial tpsl not encoded: %s", payloadWith[1:])
	}
	if strings.Contains(string(payloadWith), "slTrigger") {
		t.Error("nil slTrigger encoded")
	}
}

func TestStopOrderWire(t *testing.T) {
	payload := encode(t, StopOrder{
		L1Owner:    owner,
		BaseToken:  "5",
		QuoteToken: "2",
		StopPrice:  dec(t, "95"),
		Price:      dec(t, "94.5"),
		Quantity:   dec(t, "2"),
		Side:       SideSell,
		OrderType:  OrderTypeLimit,
		OrderMode:  OrderModeBase,
	})
	if payload[0] != byte(TagStopOrder) {
		t.Fatalf("tag = 0x%02x, want 0x0a", payload[0])
	}
	want := `{"l1owner":"` + owner + `","baseToken":"5","quoteToken":"2","stopPrice":"95","price":"94.5","quantity":"2","side":1,"orderType":0,"orderMode":0}`
	if got := string(payload[1:]); got != want {
		t.Errorf("body = %s\nwant   %s", got, want)
	}
}

func TestModifyRequiresAChange(t *testing.T) {
	_, err := Encode(Modify{L1Owner: owner, OrderID: "o1"})
	if !errors.Is(err, ErrNoChanges) {
		t.Fatalf("err = %v, want ErrNoChanges", err)
	}

	payload := encode(t, Modify{L1Owner: owner, OrderID: "o1", NewPrice: decP(t, "10")})
	want := `{"l1owner":"` + owner + `","orderId":"o1","orderMode":0,"newPrice":"10"}`
	if got := string(payload[1:]); got != want {
		t.Errorf("body = %s, want %s", got, want)
	}

	payload = encode(t, Modify{L1Owner: owner, OrderID: "o1", NewQty: decP(t, "7.25"), OrderMode: OrderModeQuote})
	if !strings.Contains(string(payload), `"newQty":"7.25"`) {
		t.Errorf("newQty missing: %s", payload[1:])
	}
	if strings.Contains(string(payload), "newPrice") {
		t.Errorf("nil newPrice encoded: %s", payload[1:])
	}
}

func TestEnumValidation(t *testing.T) {
	order := Order{
		L1Owner:    owner,
		BaseToken:  "5",
		QuoteToken: "2",
		Side:       2,
		Price:      dec(t, "1"),
		Quantity:   dec(t, "1"),
	}
	if _, err := Encode(order); !errors.Is(err, ErrInvalidEnum) {
		t.Errorf("side=2: err = %v, want ErrInvalidEnum", err)
	}

	order.Side = SideBuy
	order.OrderMode = -1
	if _, err := Encode(order); !errors.Is(err, ErrInvalidEnum) {
		t.Errorf("orderMode=-1: err = %v, want ErrInvalidEnum", err)
	}
}

func TestEmptyFieldValidation(t *testing.T) {
	if _, err := Encode(Cancel{L1Owner: owner, OrderID: "   "}); !errors.Is(err, ErrEmptyField) {
		t.Errorf("blank orderId: err = %v, want ErrEmptyField", err)
	}
	if _, err := Encode(TokenTransfer{L1Owner: owner, To: owner, Token: ""}); !errors.Is(err, ErrEmptyField) {
		t.Errorf("empty token: err = %v, want ErrEmptyField", err)
	}
}

func TestTransferWire(t *testing.T) {
	to := "bb00000000000000000000000000000000000000"
	payload := encode(t, ValueTransfer{L1Owner: owner, To: to, Value: dec(t, "1500")})
	if payload[0] != byte(TagValueTransfer) {
		t.Fatalf("tag = 0x%02x, want 0x04", payload[0])
	}
	var got map[string]any
	if err := json.Unmarshal(payload[1:], &got); err != nil {
		t.Fatal(err)
	}
	if got["to"] != "0x"+to {
		t.Errorf("to = %v, want 0x-prefixed", got["to"])
	}
	if got["value"] != "1500" {
		t.Errorf("value = %v, want \"1500\"", got["value"])
	}

	payload = encode(t, TokenTransfer{L1Owner: owner, To: to, Value: dec(t, "0.5"), Token: "3"})
	if payload[0] != byte(TagTokenTransfer) {
		t.Fatalf("tag = 0x%02x, want 0x05", payload[0])
	}
	if !strings.Contains(string(payload), `"token":"3"`) {
		t.Errorf("token missing: %s", payload[1:])
	}
}

func TestSessionContextWire(t *testing.T) {
	ctx := SessionContext{
		Op:          TagSessionRegister,
		PublicKey:   "cc00000000000000000000000000000000000000",
		ExpiresAt:   1700000000000,
		Nonce:       1690000000000,
		L1Owner:     owner,
		L1Signature: "c2ln",
	}
	payload := encode(t, ctx)
	if payload[0] != byte(TagSessionRegister) {
		t.Fatalf("tag = 0x%02x, want 0x01", payload[0])
	}
	want := `{"type":1,"publickey":"0xcc00000000000000000000000000000000000000","expiresAt":1700000000000,"nonce":1690000000000,"l1owner":"` + owner + `","l1signature":"c2ln"}`
	if got := string(payload[1:]); got != want {
		t.Errorf("body = %s\nwant   %s", got, want)
	}

	ctx.Op = TagSessionUpdate
	payload = encode(t, ctx)
	if !strings.Contains(string(payload[1:]), `"type":2`) {
		t.Errorf("update type wrong: %s", payload[1:])
	}

	ctx.Op = TagOrder
	if _, err := Encode(ctx); err == nil {
		t.Error("non-session tag accepted")
	}

	ctx.Op = TagSessionDelete
	ctx.Nonce = -1
	if _, err := Encode(ctx); err == nil {
		t.Error("negative nonce accepted")
	}
}

func TestSessionMetadataOmitted(t *testing.T) {
	ctx := SessionContext{
		Op:          TagSessionRegister,
		PublicKey:   owner,
		L1Owner:     owner,
		L1Signature: "sig",
	}
	payload := encode(t, ctx)
	if strings.Contains(string(payload), "metadata") {
		t.Error("empty metadata encoded")
	}
	ctx.Metadata = "bot-1"
	payload = encode(t, ctx)
	if !strings.Contains(string(payload), `"metadata":"bot-1"`) {
		t.Errorf("metadata missing: %s", payload[1:])
	}
}
