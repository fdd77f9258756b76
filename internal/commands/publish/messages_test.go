package publishcmd

import "testing"

func TestPublishCommandValidate(t *testing.T) {
	cases := []struct {
		name    string
		path    string
		wantErr bool
	}{
		{name: "missing", path: "", wantErr: true},
		{name: "blank", path: "   ", wantErr: true},
		{name: "wrong extension", path: "notes/post.txt", wantErr: true},
		{name: "no extension", path: "notes/post", wantErr: true},
		{name: "md", path: "notes/post.md"},
		{name: "markdown upper", path: "notes/POST.MARKDOWN"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := PublishCommand{FilePath: tc.path}.Validate()
			if tc.wantErr && err == nil {
				t.Fatalf("expected error for %q", tc.path)
			}
			if !tc.wantErr && err != nil {
				t.Fatalf("unexpected error for %q: %v", tc.path, err)
			}
		})
	}
}

func TestPublishCommandType(t *testing.T) {
	if got := (PublishCommand{}).Type(); got != "notepub.article.publish" {
		t.Fatalf("unexpected message type %q", got)
	}
}
