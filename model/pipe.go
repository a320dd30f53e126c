package model

import "context"

// forward copies responses from src to dst until src is closed and then
// returns the first error reported on srcErr. It gives up with ctx.Err()
// when ctx is canceled while dst is not being drained.
func forward(ctx context.Context, src <-chan Response, srcErr <-chan error, dst chan<- Response) error {
	for src != nil || srcErr != nil {
		select {
		case r, ok := <-src:
			if !ok {
				src = nil
				continue
			}
			select {
			case dst <- r:
			case <-ctx.Done():
				return ctx.Err()
			}
		case err, ok := <-srcErr:
			if !ok {
				srcErr = nil
				continue
			}
			if err != nil {
				return err
			}
		}
	}
	return nil
}

