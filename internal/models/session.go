package models

// CookSession is the server-side record of one cook, as held by the session store.
type CookSession struct {
	Filename    string
	CookfileID  string
	Title       string
	Labels      map[Channel]string
	TimeLabels  []any
	Data        map[Channel][]any
	Annotations any
	Comments    []Comment
	Assets      []MediaAsset
}
