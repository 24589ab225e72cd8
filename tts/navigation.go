package tts

// GoToPage moves the session to target, clamped to the document's pages.
//
// Narration in flight is cancelled silently. With autoplay the new page is
// read as soon as its text is ready; otherwise the session waits on the new
// page. Asking for the current page without autoplay does nothing.
func (c *Controller) GoToPage(target int, autoplay bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrControllerClosed
	}
	if c.session.Document == nil {
		return ErrNoDocument
	}

	c.goToPageLocked(target, autoplay)
	return nil
}

// NextPage moves one page forward, continuing narration when the user was
// reading. It does nothing on the last page.
func (c *Controller) NextPage() error {
	return c.step(1)
}

// PrevPage moves one page back, continuing narration when the user was
// reading. It does nothing on the first page.
func (c *Controller) PrevPage() error {
	return c.step(-1)
}

func (c *Controller) step(delta int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrControllerClosed
	}
	doc := c.session.Document
	if doc == nil {
		return ErrNoDocument
	}

	target := ClampPage(c.session.Page+delta, doc.PageCount())
	if target == c.session.Page {
		return nil
	}

	c.goToPageLocked(target, c.session.Reading || c.machine.Current().IsActive())
	return nil
}

func (c *Controller) goToPageLocked(target int, autoplay bool) {
	target = ClampPage(target, c.session.Document.PageCount())
	if target == c.session.Page && !autoplay {
		return
	}

	c.logger.Debug("Going to page", "from", c.session.Page, "to", target, "autoplay", autoplay)

	// Internal cancellation passes through Stopped without reporting it.
	c.cancelLocked()
	c.transitionLocked(StateStopped)

	c.session.Page = target
	c.session.Chunk = 0
	c.session.Chunks = nil

	if autoplay && c.available {
		c.session.Reading = true
		c.startLocked()
		return
	}

	c.session.Reading = false
	c.transitionLocked(StateIdle)
	if c.available {
		c.session.Status = readyStatus(target)
	}
	c.publishLocked()
}

// ClampPage limits page to [1, pageCount].
func ClampPage(page, pageCount int) int {
	if pageCount < 1 {
		pageCount = 1
	}
	switch {
	case page < 1:
		return 1
	case page > pageCount:
		return pageCount
	}
	return page
}
