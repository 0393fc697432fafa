/*
Package codedemo builds demos around evaluated code snippets.

A CodeDemo walks two sites: at "setup" any response runs the setup code
through the engine, and at "commands" the user picks a snippet by index
(or "a" for all of them) and sees it echoed and evaluated. A SandboxDemo
adds sandbox mode, an interactive shell over the same namespace.

Two engines are provided: JSEngine evaluates JavaScript in a persistent
goja runtime, and ExprEngine evaluates expr-lang expressions against a
variable environment with assignment emulation.

	demo, err := codedemo.NewSandboxDemo("SandboxDemo", codedemo.NewJSEngine())
	if err != nil {
	    log.Fatal(err)
	}
	if err := demo.Run(context.Background()); err != nil {
	    log.Fatal(err)
	}

Snippets and setup code come from the configuration (config.Config's Setup
and Commands fields) or fall back to a small demonstration set.
*/
package codedemo
