package listing

// ── Element functions ─────────────────────────────────────────────────────────
// Called through Runtime.callFunctionOn with `this` bound to the node.

// interactableJS reports whether the node is rendered, visible and enabled.
const interactableJS = `function() {
	const r = this.getBoundingClientRect();
	const s = window.getComputedStyle(this);
	return r.width > 0 && r.height > 0
		&& s.visibility !== 'hidden' && s.display !== 'none'
		&& !this.disabled;
}`

// textJS returns the rendered text, falling back to textContent for nodes
// inside collapsed menus.
const textJS = `function() {
	return (this.innerText || this.textContent || '').trim();
}`

// hitTestJS returns "" when a click at the node's centre would land on the
// node itself, otherwise a short description of what is on top.
const hitTestJS = `function() {
	const r = this.getBoundingClientRect();
	const hit = document.elementFromPoint(r.left + r.width / 2, r.top + r.height / 2);
	if (hit === null) return 'nothing (offscreen)';
	if (hit === this || this.contains(hit)) return '';
	let d = hit.tagName.toLowerCase();
	if (hit.id) d += '#' + hit.id;
	if (typeof hit.className === 'string' && hit.className) d += '.' + hit.className.trim().split(/\s+/).join('.');
	return d;
}`

// forceClickJS dispatches the click on the node, bypassing hit-testing.
const forceClickJS = `function() { this.click(); }`

// ── Page scripts ──────────────────────────────────────────────────────────────

// currencyProbeJS lists every element whose id, class or own text mentions
// currency, for selector debugging.
const currencyProbeJS = `
JSON.stringify(
	Array.from(document.querySelectorAll('*'))
		.filter(el => {
			const own = Array.from(el.childNodes)
				.filter(n => n.nodeType === Node.TEXT_NODE)
				.map(n => n.textContent).join(' ');
			const hay = [el.id, typeof el.className === 'string' ? el.className : '', own]
				.join(' ').toLowerCase();
			return hay.includes('currency');
		})
		.slice(0, 50)
		.map(el => ({
			tag: el.tagName.toLowerCase(),
			id: el.id || '',
			class: typeof el.className === 'string' ? el.className : '',
			text: (el.innerText || '').trim().slice(0, 80),
		}))
)
`
