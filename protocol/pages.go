package protocol

import "html"

// MovedPermanentlyPage renders the 301 body linking to target
func MovedPermanentlyPage(target string) string {
	return `
<HTML><HEAD><meta http-equiv="content-type" content="text/html;charset=utf-8">
<TITLE>301 Moved Permanently</TITLE><link rel="stylesheet" type="text/css"></HEAD><BODY>
<H1 class="err">301</H1>
<H2 class="msg"> The document has moved
<A HREF=` + target + `>here</A>.</H2>
</BODY></HTML>
`
}

// NotFoundPage renders the 404 body
func NotFoundPage() string {
	return `
<!DOCTYPE html>
<html>
<head>
	<title>404 Page</title>
	<meta http-equiv="Content-Type" content="text/html;charset=utf-8"/>
	<link rel="stylesheet" type="text/css">
</head>

<body>
	<div class="eg">
		<h1 class="err"> 404 </h1>
		<h2 class="msg"> Sorry this is not a valid page, please try again and stay safe...</h2>
	</div>
</body>
</html>
`
}

// MethodNotAllowedPage renders the 405 body. The method is HTML-escaped.
func MethodNotAllowedPage(method string) string {
	return `
<HTML><HEAD><meta http-equiv="content-type" content="text/html;charset=utf-8">
<TITLE>405 Method Not Allowed</TITLE><link rel="stylesheet" type="text/css"></HEAD><BODY>
<H1 class="err">405</H1>
<H2 class="msg">` + html.EscapeString(method) + ` Method Not Allowed</H2>
</BODY></HTML>
`
}

// InternalServerErrorPage renders the generic 500 body. It never carries
// fault details.
func InternalServerErrorPage() string {
	return `
<HTML><HEAD><meta http-equiv="content-type" content="text/html;charset=utf-8">
<TITLE>500 Internal Server Error</TITLE><link rel="stylesheet" type="text/css"></HEAD><BODY>
<H1 class="err">Oh No, the server got some error!</H1>
<H2 class="msg">it will probably work next time...</H2>
</BODY></HTML>
`
}
