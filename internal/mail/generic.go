package mail

// GenericTemplate is used when a tenant or event has no email configuration for
// the requested type. It understands the TITLE, USER_NAME, SERVICE_NAME, ACTION
// and LINK keys.
const GenericTemplate = `<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <style>
        body { margin: 0; font-family: Arial, Helvetica, sans-serif; }
        h1, div { background: rgb(218, 218, 218); text-align: center; padding: 10px; margin: 0; }
        p { background-color: rgb(245, 245, 245); margin: 0; padding: 10px; text-align: center; }
        a { display: block; text-align: center; }
    </style>
</head>
<body>
    <h1>[TITLE]</h1>
    <p>Hello, [USER_NAME]! We could not find an email template for [SERVICE_NAME],
    so this generic message is being sent instead. You performed the action
    "[ACTION]" and here is your link:</p>
    <a target="_blank" href="[LINK]">[LINK]</a>
</body>
</html>
`

// GenericSubject is the subject used with GenericTemplate.
const GenericSubject = "Start System"
