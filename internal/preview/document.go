package preview

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/launchpad-ai/launchpad-backend/internal/synthesis"
)

var (
	// ErrCodeTooShort rejects payloads that cannot possibly be a component.
	ErrCodeTooShort = errors.New("preview code too short")

	// ErrNoComponent rejects code that never declares the AppDemo component.
	ErrNoComponent = errors.New("preview code does not declare " + synthesis.ComponentName)
)

const minCodeLength = 5

// BuildDocument wraps component code in a self-contained HTML document.
// The document loads its runtime from CDNs, compiles the code in the
// browser, and reports any runtime crash to the embedding page as a
// DEMO_ERROR message. Code is embedded as a JSON string literal, so
// nothing in it can break out of the script that evaluates it.
func BuildDocument(code string) (string, error) {
	code = strings.TrimSpace(code)
	if len(code) < minCodeLength {
		return "", ErrCodeTooShort
	}
	if !synthesis.HasComponentDecl(code) {
		return "", ErrNoComponent
	}

	encoded, err := json.Marshal(code)
	if err != nil {
		return "", err
	}
	return strings.Replace(documentTemplate, "__APP_SOURCE__", string(encoded), 1), nil
}

// documentTemplate is the sandbox runtime. Icons are resolved through an
// explicit whitelist; a name outside it renders a placeholder glyph
// instead of crashing the demo.
const documentTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<script src="https://unpkg.com/react@18/umd/react.production.min.js" crossorigin></script>
<script src="https://unpkg.com/react-dom@18/umd/react-dom.production.min.js" crossorigin></script>
<script src="https://unpkg.com/@babel/standalone/babel.min.js"></script>
<script src="https://unpkg.com/framer-motion@11/dist/framer-motion.js"></script>
<script src="https://unpkg.com/lucide@latest/dist/umd/lucide.min.js"></script>
<script src="https://cdn.tailwindcss.com"></script>
<style>
  html, body, #root { height: 100%; margin: 0; }
  body { background: #020617; overflow: hidden; }
  .error-box {
    margin: 16px; padding: 12px; border-radius: 8px;
    background: #450a0a; color: #fecaca;
    font: 13px/1.5 ui-monospace, monospace;
    white-space: pre-wrap; word-break: break-word;
  }
</style>
</head>
<body>
<div id="root"></div>
<script>
(function () {
  "use strict";

  function report(err) {
    var message = err && err.message ? String(err.message) : String(err);
    var payload = { type: "DEMO_ERROR", message: message };
    if (err && err.stack) { payload.stack = String(err.stack); }
    if (window.parent && window.parent !== window) {
      window.parent.postMessage(payload, "*");
    }
    var root = document.getElementById("root");
    if (root) {
      var box = document.createElement("div");
      box.className = "error-box";
      box.textContent = "Demo crashed: " + message;
      root.innerHTML = "";
      root.appendChild(box);
    }
  }

  window.onerror = function (message, source, line, col, err) {
    report(err || new Error(String(message)));
    return true;
  };
  window.addEventListener("unhandledrejection", function (event) {
    report(event.reason || new Error("unhandled rejection"));
  });

  var motionLib = window.Motion || window.framerMotion || {};
  var motion = motionLib.motion || function () { return null; };
  var AnimatePresence = motionLib.AnimatePresence || function (props) { return props.children || null; };

  var ICON_NAMES = [
    "ArrowLeft", "ArrowRight", "Bell", "Calendar", "Camera", "Check",
    "ChevronLeft", "ChevronRight", "Clock", "Heart", "Home", "Image",
    "MapPin", "Menu", "MessageCircle", "Play", "Plus", "Search",
    "Settings", "Share2", "ShoppingCart", "Sparkles", "Star",
    "TrendingUp", "User", "Users", "X", "Zap"
  ];
  var ICONS = {};
  var library = (window.lucide && window.lucide.icons) || {};
  for (var i = 0; i < ICON_NAMES.length; i++) {
    var entry = library[ICON_NAMES[i]];
    if (entry) { ICONS[ICON_NAMES[i]] = entry; }
  }

  function Icon(props) {
    var size = props.size || 24;
    var node = ICONS[props.name];
    var children;
    if (node) {
      children = node.map(function (part, idx) {
        var attrs = Object.assign({ key: idx }, part[1]);
        return React.createElement(part[0], attrs);
      });
    } else {
      children = [React.createElement("circle", { key: 0, cx: 12, cy: 12, r: 9 })];
    }
    return React.createElement("svg", {
      width: size,
      height: size,
      viewBox: "0 0 24 24",
      fill: "none",
      stroke: props.color || "currentColor",
      strokeWidth: 2,
      strokeLinecap: "round",
      strokeLinejoin: "round",
      className: props.className || ""
    }, children);
  }

  var source = __APP_SOURCE__;

  try {
    var program = source +
      "\n\nReactDOM.createRoot(document.getElementById('root'))" +
      ".render(React.createElement(AppDemo));";
    var compiled = Babel.transform(program, {
      presets: [["react"], ["typescript", { isTSX: true, allExtensions: true }]],
      filename: "AppDemo.tsx"
    }).code;
    new Function("React", "ReactDOM", "motion", "AnimatePresence", "Icon", compiled)(
      React, ReactDOM, motion, AnimatePresence, Icon);
  } catch (err) {
    report(err);
  }
})();
</script>
</body>
</html>`
