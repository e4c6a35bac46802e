package protocol

import "testing"

func TestNameRegexp(t *testing.T) {
	good := []string{"@robert", "@rgp"}
	bad := []string{"@012345678901234567891", "@gj"}
	for _, n := range good {
		if !NameRegexp.MatchString(n) {
			t.Errorf("expected %q to match NameRegexp", n)
		}
	}
	for _, n := range bad {
		if NameRegexp.MatchString(n) {
			t.Errorf("expected %q not to match NameRegexp", n)
		}
	}
}

func TestParseEmpty(t *testing.T) {
	got := Parse("")
	if got.Kind != ActionIgnore {
		t.Fatalf("Parse(\"\") = %+v, want Ignore", got)
	}
}

func TestParseQuit(t *testing.T) {
	cases := []struct {
		in   string
		want ActionKind
	}{
		{"QUIT", ActionProcess},
		{"QUIT other stuff", ActionProcess},
		{"quit other stuff", ActionIgnore},
		{"quit", ActionIgnore},
	}
	for _, c := range cases {
		got := Parse(c.in)
		if got.Kind != c.want {
			t.Errorf("Parse(%q).Kind = %v, want %v", c.in, got.Kind, c.want)
		}
	}
	got := Parse("QUIT")
	if got.Message.Kind != IncomingQuit {
		t.Errorf("Parse(QUIT) message kind = %v, want IncomingQuit", got.Message.Kind)
	}
}

func TestParseName(t *testing.T) {
	got := Parse("NAME @robert")
	if got.Kind != ActionProcess || got.Message.Kind != IncomingName || got.Message.Name != "@robert" {
		t.Errorf("Parse(NAME @robert) = %+v", got)
	}

	got = Parse("NAME")
	wantErr(t, got, CommandName, ErrorBadArguments)

	got = Parse("NAME @robert Steve")
	wantErr(t, got, CommandName, ErrorBadArguments)

	got = Parse("NAME @robert**")
	wantErr(t, got, CommandName, ErrorBadNameFormat)

	got = Parse("name")
	if got.Kind != ActionIgnore {
		t.Errorf("Parse(name) = %+v, want Ignore", got)
	}
}

func TestParseJoin(t *testing.T) {
	got := Parse("JOIN #room1")
	if got.Kind != ActionProcess || got.Message.Room != "#room1" {
		t.Errorf("Parse(JOIN #room1) = %+v", got)
	}
	wantErr(t, Parse("JOIN"), CommandJoin, ErrorBadArguments)
	wantErr(t, Parse("JOIN #room #room2"), CommandJoin, ErrorBadArguments)
	wantErr(t, Parse("JOIN @room"), CommandJoin, ErrorBadRoomNameFormat)
	if Parse("join").Kind != ActionIgnore {
		t.Errorf("Parse(join) should be ignored")
	}
}

func TestParseLeave(t *testing.T) {
	got := Parse("LEAVE #room1")
	if got.Kind != ActionProcess || got.Message.Room != "#room1" {
		t.Errorf("Parse(LEAVE #room1) = %+v", got)
	}
	wantErr(t, Parse("LEAVE"), CommandLeave, ErrorBadArguments)
	wantErr(t, Parse("LEAVE #room #room2"), CommandLeave, ErrorBadArguments)
	wantErr(t, Parse("LEAVE @room"), CommandLeave, ErrorBadRoomNameFormat)
}

func TestParseSay(t *testing.T) {
	got := Parse("SAY #room341 hello everyone!")
	if got.Kind != ActionProcess || got.Message.Kind != IncomingSayRoom ||
		got.Message.Target != "#room341" || got.Message.Text != "hello everyone!" {
		t.Errorf("Parse(SAY #room341 ...) = %+v", got)
	}

	got = Parse("SAY @kelsey hi kelsey :)")
	if got.Kind != ActionProcess || got.Message.Kind != IncomingSayUser ||
		got.Message.Target != "@kelsey" || got.Message.Text != "hi kelsey :)" {
		t.Errorf("Parse(SAY @kelsey ...) = %+v", got)
	}

	wantErr(t, Parse("SAY #room++ hi there room!"), CommandSay, ErrorBadRoomNameFormat)
	wantErr(t, Parse("SAY @friend% hi there friend!"), CommandSay, ErrorBadNameFormat)
	wantErr(t, Parse("SAY @dave"), CommandSay, ErrorBadArguments)
	wantErr(t, Parse("SAY #happy"), CommandSay, ErrorBadArguments)
	wantErr(t, Parse("SAY "), CommandSay, ErrorBadArguments)
	wantErr(t, Parse("SAY  #room  hi"), CommandSay, ErrorBadArguments)
}

func TestParseRooms(t *testing.T) {
	got := Parse("ROOMS")
	if got.Kind != ActionProcess || got.Message.Kind != IncomingRooms {
		t.Errorf("Parse(ROOMS) = %+v", got)
	}
	wantErr(t, Parse("ROOMS stuff"), CommandRooms, ErrorBadArguments)
}

func TestParseUsers(t *testing.T) {
	got := Parse("USERS #test123")
	if got.Kind != ActionProcess || got.Message.Room != "#test123" {
		t.Errorf("Parse(USERS #test123) = %+v", got)
	}
	wantErr(t, Parse("USERS"), CommandUsers, ErrorBadArguments)
	wantErr(t, Parse("USERS #juice #man"), CommandUsers, ErrorBadArguments)
}

func TestParsePong(t *testing.T) {
	got := Parse("PONG")
	if got.Kind != ActionProcess || got.Message.Kind != IncomingPong {
		t.Errorf("Parse(PONG) = %+v", got)
	}
	wantErr(t, Parse("PONG abc def"), CommandPong, ErrorBadArguments)
}

func wantErr(t *testing.T, got ParsedAction, cmd Command, kind ErrorKind) {
	t.Helper()
	if got.Kind != ActionError || got.Command != cmd || got.Error != kind {
		t.Errorf("got %+v, want ActionError cmd=%v kind=%v", got, cmd, kind)
	}
}
